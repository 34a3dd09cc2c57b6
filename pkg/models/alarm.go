package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SoundNone marks an alarm that fires without audio.
const SoundNone = "None"

// Device actions applied on snooze, independent of the per-device trigger state.
const (
	SnoozeActionNone = "None"
	SnoozeActionOn   = "ON"
	SnoozeActionOff  = "OFF"
)

// Defaults substituted for optional fields missing from persisted alarms.
// Old payloads predate some of these fields, so decoding never rejects them.
const (
	DefaultBrightness     = 50
	DefaultColor          = 0xFFFFFF
	DefaultSnoozeDuration = 5
)

// DeviceAction is the target state for one light when its alarm fires.
type DeviceAction struct {
	Device     string `json:"device"`     // vendor device identifier
	SKU        string `json:"sku"`        // vendor model, required on every command
	OnOff      bool   `json:"onOff"`      // power state for the trigger
	Brightness int    `json:"brightness"` // 1-100, applied only when OnOff is true
	Color      int    `json:"color"`      // packed 24-bit RGB, applied only when OnOff is true
}

// Alarm is a daily-recurring wake time with the devices and sound it drives.
// JSON field names match the storage payloads written by earlier versions of
// the app, so existing alarm lists round-trip unchanged.
type Alarm struct {
	ID                 string         `json:"id"`
	Time               time.Time      `json:"time"` // only hour/minute participate in matching
	Enabled            bool           `json:"enabled"`
	Devices            []DeviceAction `json:"devices"`
	Sound              string         `json:"sound"`
	Snooze             bool           `json:"snooze"`
	SnoozeDuration     int            `json:"snoozeDuration"` // minutes
	SnoozeDeviceAction string         `json:"snoozeDeviceAction"`
	AlertShown         bool           `json:"alertShown"`
	SnoozeTime         *time.Time     `json:"snoozeTime"` // when set, replaces Time for due checks
	Label              string         `json:"label,omitempty"`
}

// UnmarshalJSON decodes a device action, substituting defaults for fields
// absent from legacy payloads.
func (d *DeviceAction) UnmarshalJSON(data []byte) error {
	type raw struct {
		Device     string `json:"device"`
		SKU        string `json:"sku"`
		OnOff      *bool  `json:"onOff"`
		Brightness *int   `json:"brightness"`
		Color      *int   `json:"color"`
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	d.Device = r.Device
	d.SKU = r.SKU

	d.OnOff = true
	if r.OnOff != nil {
		d.OnOff = *r.OnOff
	}
	d.Brightness = DefaultBrightness
	if r.Brightness != nil {
		d.Brightness = *r.Brightness
	}
	d.Color = DefaultColor
	if r.Color != nil {
		d.Color = *r.Color
	}
	return nil
}

// UnmarshalJSON decodes an alarm, substituting defaults for optional fields.
func (a *Alarm) UnmarshalJSON(data []byte) error {
	type raw struct {
		ID                 string         `json:"id"`
		Time               time.Time      `json:"time"`
		Enabled            bool           `json:"enabled"`
		Devices            []DeviceAction `json:"devices"`
		Sound              *string        `json:"sound"`
		Snooze             *bool          `json:"snooze"`
		SnoozeDuration     *int           `json:"snoozeDuration"`
		SnoozeDeviceAction *string        `json:"snoozeDeviceAction"`
		AlertShown         bool           `json:"alertShown"`
		SnoozeTime         *time.Time     `json:"snoozeTime"`
		Label              string         `json:"label"`
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	a.ID = r.ID
	a.Time = r.Time
	a.Enabled = r.Enabled
	a.Devices = r.Devices
	a.AlertShown = r.AlertShown
	a.SnoozeTime = r.SnoozeTime
	a.Label = r.Label

	a.Sound = SoundNone
	if r.Sound != nil && *r.Sound != "" {
		a.Sound = *r.Sound
	}
	a.Snooze = false
	if r.Snooze != nil {
		a.Snooze = *r.Snooze
	}
	a.SnoozeDuration = DefaultSnoozeDuration
	if r.SnoozeDuration != nil && *r.SnoozeDuration > 0 {
		a.SnoozeDuration = *r.SnoozeDuration
	}
	a.SnoozeDeviceAction = SnoozeActionNone
	if r.SnoozeDeviceAction != nil && *r.SnoozeDeviceAction != "" {
		a.SnoozeDeviceAction = *r.SnoozeDeviceAction
	}
	return nil
}

// Validate checks the fields set at the editing boundary. The scheduling and
// trigger code assumes alarms have already passed this.
func (a *Alarm) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("alarm has no id")
	}
	if a.Time.IsZero() {
		return fmt.Errorf("alarm %s has no time", a.ID)
	}
	if a.SnoozeDuration <= 0 {
		return fmt.Errorf("alarm %s: snooze duration must be positive, got %d", a.ID, a.SnoozeDuration)
	}
	switch a.SnoozeDeviceAction {
	case SnoozeActionNone, SnoozeActionOn, SnoozeActionOff:
	default:
		return fmt.Errorf("alarm %s: unknown snooze device action %q", a.ID, a.SnoozeDeviceAction)
	}
	for _, d := range a.Devices {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("alarm %s: %w", a.ID, err)
		}
	}
	return nil
}

// Validate checks a device action's ranges.
func (d *DeviceAction) Validate() error {
	if d.Device == "" || d.SKU == "" {
		return fmt.Errorf("device action needs both device and sku")
	}
	if d.Brightness < 1 || d.Brightness > 100 {
		return fmt.Errorf("device %s: brightness %d out of range [1,100]", d.Device, d.Brightness)
	}
	if d.Color < 0 || d.Color > 0xFFFFFF {
		return fmt.Errorf("device %s: color %#x out of range [0,0xFFFFFF]", d.Device, d.Color)
	}
	return nil
}

// Target returns the time the next due check is evaluated against: the snooze
// deadline when one is set, the configured wake time otherwise.
func (a *Alarm) Target() time.Time {
	if a.SnoozeTime != nil {
		return *a.SnoozeTime
	}
	return a.Time
}
