package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"wakelight/pkg/models"
)

// Evaluate returns the alarms due to fire at now. An alarm is due when it is
// enabled, has not alerted for the current window, and its target time (the
// snooze deadline when set, the configured wake time otherwise) falls in the
// same hour and minute as now. Matching is minute-granular on purpose: ticks
// faster than once a minute stay idempotent because the alert-shown flag is
// the sole de-duplication guard. Stored times may carry any zone; they are
// compared in now's location.
func Evaluate(now time.Time, alarms []models.Alarm) []models.Alarm {
	var due []models.Alarm
	for _, a := range alarms {
		if !a.Enabled || a.AlertShown {
			continue
		}
		target := a.Target().In(now.Location())
		if target.Hour() == now.Hour() && target.Minute() == now.Minute() {
			due = append(due, a)
		}
	}
	return due
}

// Scheduler drives Evaluate from a recurring tick. The fast in-process loop
// and the externally scheduled single pass both come through Tick, reading
// the persisted list fresh every time, so the two cadences can never diverge.
type Scheduler struct {
	store    AlarmStore
	pipeline *Pipeline
	interval time.Duration
	Now      func() time.Time
	log      logrus.FieldLogger
}

// NewScheduler builds a scheduler ticking at the given interval (1s when
// zero).
func NewScheduler(store AlarmStore, pipeline *Pipeline, interval time.Duration, log logrus.FieldLogger) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		store:    store,
		pipeline: pipeline,
		interval: interval,
		Now:      time.Now,
		log:      log,
	}
}

// Run ticks until ctx is cancelled. Starting a second loop over the same
// store is harmless; the pipeline's alert-shown re-check keeps duplicate
// ticks from double-firing.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval).Info("scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one evaluation pass against the persisted alarm list and
// fires every due alarm. Fire only persists the alert-shown flag before
// returning, so the pass never waits on device commands and a stuck device
// cannot delay a sibling alarm. A failing store read skips the pass; the
// next tick retries naturally.
func (s *Scheduler) Tick(ctx context.Context) {
	alarms, err := s.store.List()
	if err != nil {
		s.log.WithError(err).Error("loading alarms")
		return
	}

	for _, a := range Evaluate(s.Now(), alarms) {
		s.pipeline.Fire(ctx, a)
	}
}
