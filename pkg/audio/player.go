package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

// Global audio context singleton. oto supports one context per process; it is
// created on the first playback with that sound's format.
var (
	globalAudioCtx     *oto.Context
	globalAudioCtxOnce sync.Once
	audioCtxReady      bool
)

// Player loops one decoded WAV until stopped.
type Player struct {
	stopChan chan struct{}
	player   *oto.Player
	stopped  bool
	mu       sync.Mutex
}

func initAudioContext(format *wavFormat) error {
	globalAudioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			logrus.WithError(err).Error("initializing audio context")
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalAudioCtx = ctx
		audioCtxReady = true
	})
	if !audioCtxReady {
		return fmt.Errorf("audio context not available")
	}
	return nil
}

// NewPlayer starts looping playback of the given WAV data. The player keeps
// looping until Stop is called.
func NewPlayer(wavData []byte) (*Player, error) {
	format, audioData, err := parseWAV(wavData)
	if err != nil {
		return nil, fmt.Errorf("parsing WAV data: %w", err)
	}
	if err := initAudioContext(format); err != nil {
		return nil, err
	}

	p := &Player{
		stopChan: make(chan struct{}),
	}
	go p.playLoop(audioData)
	return p, nil
}

func (p *Player) playLoop(audioData []byte) {
	for {
		pl := globalAudioCtx.NewPlayer(bytes.NewReader(audioData))
		if !p.setCurrent(pl) {
			pl.Close()
			return
		}
		pl.Play()

		// Wait for the sound to finish playing or stop signal
		for pl.IsPlaying() {
			select {
			case <-p.stopChan:
				pl.Pause()
				pl.Close()
				return
			case <-time.After(10 * time.Millisecond):
				// Continue checking
			}
		}

		// Close the player before creating a new one
		if err := pl.Close(); err != nil {
			logrus.WithError(err).Warn("closing audio player")
		}

		// Check if stop was requested between loops
		select {
		case <-p.stopChan:
			return
		default:
			// Continue looping
		}
	}
}

// setCurrent publishes the loop's active player so Stop can pause it.
// Returns false when Stop already ran; the loop must then exit without
// playing.
func (p *Player) setCurrent(pl *oto.Player) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return false
	}
	p.player = pl
	return true
}

// Stop ends playback and releases the underlying player.
func (p *Player) Stop() {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stopped {
		p.stopped = true
		close(p.stopChan)

		// Also try to pause the current player if it exists
		if p.player != nil {
			p.player.Pause()
		}
	}
}
