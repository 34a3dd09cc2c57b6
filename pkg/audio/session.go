package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fileScheme marks a sound reference pointing at a user-picked local file
// rather than a bundled sound name.
const fileScheme = "file://"

// Session owns the process-wide playback handle. At most one sound plays at a
// time: starting a new one tears down the previous player first. The trigger
// pipeline starts sessions, the response handlers stop them; neither touches
// the player directly.
type Session struct {
	mu       sync.Mutex
	soundDir string
	player   *Player
}

// NewSession builds a session resolving bundled sound names inside soundDir.
func NewSession(soundDir string) *Session {
	return &Session{soundDir: soundDir}
}

// Start resolves ref, replaces any currently playing sound, and begins
// looping playback.
func (s *Session) Start(ref string) error {
	data, err := s.resolve(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		s.player.Stop()
		s.player = nil
	}

	p, err := NewPlayer(data)
	if err != nil {
		return err
	}
	s.player = p
	return nil
}

// Stop ends playback and releases the handle. Safe to call with nothing
// playing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		s.player.Stop()
		s.player = nil
	}
}

// Playing reports whether a sound is currently active.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player != nil
}

// resolve loads the WAV bytes for a sound reference: a file:// path points at
// a user-picked file, anything else is a bundled sound name looked up in the
// sound directory.
func (s *Session) resolve(ref string) ([]byte, error) {
	if strings.HasPrefix(ref, fileScheme) {
		path := strings.TrimPrefix(ref, fileScheme)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading sound file: %w", err)
		}
		return data, nil
	}

	name := ref
	if filepath.Ext(name) == "" {
		name += ".wav"
	}
	data, err := os.ReadFile(filepath.Join(s.soundDir, name))
	if err != nil {
		return nil, fmt.Errorf("sound %q not found in %s: %w", ref, s.soundDir, err)
	}
	return data, nil
}
