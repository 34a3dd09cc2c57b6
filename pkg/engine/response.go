package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wakelight/pkg/models"
)

// Responder processes a user's answer to an alarm alert. Both operations
// reload authoritative state from the store, so they are safe to invoke from
// a fresh process with no in-memory alarm list.
type Responder struct {
	store    AlarmStore
	gateway  Gateway
	sound    Sounder
	notifier Notifier
	Now      func() time.Time
	log      logrus.FieldLogger
}

// NewResponder wires a response handler.
func NewResponder(store AlarmStore, gateway Gateway, sound Sounder, notifier Notifier, log logrus.FieldLogger) *Responder {
	return &Responder{
		store:    store,
		gateway:  gateway,
		sound:    sound,
		notifier: notifier,
		Now:      time.Now,
		log:      log,
	}
}

// Stop disables the alarm and resets its fired state. The persist comes
// first: if it fails the stop is considered not to have happened and the
// sound keeps playing rather than letting the stored state claim otherwise.
func (r *Responder) Stop(ctx context.Context, alarmID string) error {
	_, err := r.store.Update(alarmID, func(a *models.Alarm) {
		a.Enabled = false
		a.AlertShown = false
		a.SnoozeTime = nil
	})
	if err != nil {
		r.log.WithError(err).WithField("alarm", alarmID).Error("stopping alarm")
		return err
	}

	r.sound.Stop()
	r.notifier.Dismiss(alarmID)
	r.log.WithField("alarm", alarmID).Info("alarm stopped")
	return nil
}

// Snooze re-arms the alarm for now plus the snooze duration without touching
// its enabled state. minutes <= 0 and an empty action fall back to the
// alarm's own settings. When the resolved action is ON or OFF, one power
// command goes to every device in the alarm, ignoring each device's
// configured trigger state.
func (r *Responder) Snooze(ctx context.Context, alarmID string, minutes int, action string) error {
	log := r.log.WithField("alarm", alarmID)

	updated, err := r.store.Update(alarmID, func(a *models.Alarm) {
		d := minutes
		if d <= 0 {
			d = a.SnoozeDuration
		}
		if d <= 0 {
			d = models.DefaultSnoozeDuration
		}
		until := r.Now().Add(time.Duration(d) * time.Minute).Truncate(time.Minute)
		a.SnoozeTime = &until
		a.AlertShown = false
	})
	if err != nil {
		log.WithError(err).Error("snoozing alarm")
		return err
	}

	r.sound.Stop()
	r.notifier.Dismiss(alarmID)
	log.WithField("until", updated.SnoozeTime.Format("15:04")).Info("alarm snoozed")

	if action == "" {
		action = updated.SnoozeDeviceAction
	}
	if action == models.SnoozeActionNone || action == "" {
		return nil
	}
	on := action == models.SnoozeActionOn

	var wg sync.WaitGroup
	for _, d := range updated.Devices {
		wg.Add(1)
		go func(d models.DeviceAction) {
			defer wg.Done()
			if err := r.gateway.PowerSwitch(ctx, d.SKU, d.Device, on); err != nil {
				log.WithError(err).WithField("device", d.Device).Error("snooze device action failed")
			}
		}(d)
	}
	wg.Wait()
	return nil
}
