// Package engine holds the alarm core: the scheduler that decides which
// alarms are due, the trigger pipeline that fires them, and the response
// handlers for stop and snooze. All state lives in the store; the engine is
// re-entrant across processes and relies on the persisted alert-shown flag as
// its only duplicate-fire guard.
package engine

import (
	"context"

	"wakelight/pkg/alert"
	"wakelight/pkg/models"
)

// AlarmStore is the slice of persistence the engine needs. Update must apply
// its mutation as a single read-modify-write step and return the alarm as
// persisted.
type AlarmStore interface {
	List() ([]models.Alarm, error)
	Update(id string, fn func(*models.Alarm)) (models.Alarm, error)
}

// Gateway issues one remote command per (device, capability).
type Gateway interface {
	PowerSwitch(ctx context.Context, sku, device string, on bool) error
	Brightness(ctx context.Context, sku, device string, level int) error
	ColorRGB(ctx context.Context, sku, device string, rgb int) error
}

// Sounder owns the single process-wide playback session.
type Sounder interface {
	Start(ref string) error
	Stop()
}

// Notifier raises and dismisses actionable alerts.
type Notifier interface {
	Raise(alert.Alert)
	Dismiss(alarmID string)
}
