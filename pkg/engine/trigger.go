package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wakelight/pkg/alert"
	"wakelight/pkg/models"
)

// Pipeline executes the side effects of a due alarm: mark it alerted, fan the
// device commands out, start the sound, raise the alert.
type Pipeline struct {
	store    AlarmStore
	gateway  Gateway
	sound    Sounder
	notifier Notifier
	Now      func() time.Time
	log      logrus.FieldLogger
	inflight sync.WaitGroup
}

// NewPipeline wires a trigger pipeline.
func NewPipeline(store AlarmStore, gateway Gateway, sound Sounder, notifier Notifier, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		store:    store,
		gateway:  gateway,
		sound:    sound,
		notifier: notifier,
		Now:      time.Now,
		log:      log,
	}
}

// Fire runs the trigger side effects for a due alarm at most once per due
// window. The alert-shown flag is re-checked and set in one store update, so
// a racing tick that loaded the same due list bails out here. The flag is
// persisted before any command dispatch; "fired" means that write succeeded,
// not that any device or the sound did. Fire returns once the flag is
// persisted and completes the dispatch in the background, so one unreachable
// device never stalls the tick loop or a sibling alarm. No error escapes.
func (p *Pipeline) Fire(ctx context.Context, a models.Alarm) {
	log := p.log.WithField("alarm", a.ID)

	already := false
	current, err := p.store.Update(a.ID, func(cur *models.Alarm) {
		if cur.AlertShown {
			already = true
			return
		}
		cur.AlertShown = true
	})
	if err != nil {
		log.WithError(err).Error("marking alarm alerted")
		return
	}
	if already {
		log.Debug("alert already shown, skipping")
		return
	}

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		// Dispatch with the state as persisted, not the evaluation-time copy.
		p.dispatch(ctx, current)
	}()
}

// Wait blocks until the side effects of every fired alarm have completed.
// The single-pass tick uses it so the process does not exit mid-dispatch.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

func (p *Pipeline) dispatch(ctx context.Context, a models.Alarm) {
	log := p.log.WithField("alarm", a.ID)

	var wg sync.WaitGroup
	for _, d := range a.Devices {
		wg.Add(1)
		go func(d models.DeviceAction) {
			defer wg.Done()
			p.applyDevice(ctx, log, d)
		}(d)
	}
	wg.Wait()

	if a.Sound != "" && a.Sound != models.SoundNone {
		if err := p.sound.Start(a.Sound); err != nil {
			log.WithError(err).WithField("sound", a.Sound).Error("starting alarm sound")
		}
	}

	target := a.Target()
	p.notifier.Raise(alert.Alert{
		AlarmID:            a.ID,
		Title:              "Alarm",
		Body:               fmt.Sprintf("Alarm at %s", target.Local().Format("15:04")),
		RaisedAt:           p.Now(),
		Snooze:             a.Snooze,
		SnoozeDuration:     a.SnoozeDuration,
		SnoozeDeviceAction: a.SnoozeDeviceAction,
	})
}

// applyDevice issues the command set for one device. Off is a single power
// command; on is power, brightness, then color. Failures are logged per
// command and never short-circuit the rest.
func (p *Pipeline) applyDevice(ctx context.Context, log logrus.FieldLogger, d models.DeviceAction) {
	log = log.WithField("device", d.Device)

	if !d.OnOff {
		if err := p.gateway.PowerSwitch(ctx, d.SKU, d.Device, false); err != nil {
			log.WithError(err).Error("power off failed")
		}
		return
	}

	if err := p.gateway.PowerSwitch(ctx, d.SKU, d.Device, true); err != nil {
		log.WithError(err).Error("power on failed")
	}
	if err := p.gateway.Brightness(ctx, d.SKU, d.Device, d.Brightness); err != nil {
		log.WithError(err).Error("setting brightness failed")
	}
	if err := p.gateway.ColorRGB(ctx, d.SKU, d.Device, d.Color); err != nil {
		log.WithError(err).Error("setting color failed")
	}
}
