package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"wakelight/pkg/models"
)

// Storage keys. The alarm list lives under a single key, mirroring how the
// app has always persisted it; per-device defaults get one key per
// (alarm, device) pair.
const (
	alarmsKey            = "alarms"
	deviceSettingsPrefix = "device_settings/"
)

// ErrNotFound is returned when an alarm id is not in the store.
var ErrNotFound = errors.New("alarm not found")

// AlarmStore is the typed view of the key-value store the scheduler and
// response handlers work against. Reads pass through the tolerant alarm
// decoder, so callers always see fully populated alarms.
type AlarmStore struct {
	kv *Store
}

// NewAlarmStore wraps a key-value store.
func NewAlarmStore(kv *Store) *AlarmStore {
	return &AlarmStore{kv: kv}
}

// List returns every persisted alarm.
func (as *AlarmStore) List() ([]models.Alarm, error) {
	var alarms []models.Alarm
	if _, err := as.kv.Get(alarmsKey, &alarms); err != nil {
		return nil, err
	}
	return alarms, nil
}

// Get returns the alarm with the given id.
func (as *AlarmStore) Get(id string) (models.Alarm, error) {
	alarms, err := as.List()
	if err != nil {
		return models.Alarm{}, err
	}
	for _, a := range alarms {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Alarm{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// SaveAll replaces the whole alarm list.
func (as *AlarmStore) SaveAll(alarms []models.Alarm) error {
	return as.kv.Set(alarmsKey, alarms)
}

// Add appends an alarm to the list.
func (as *AlarmStore) Add(alarm models.Alarm) error {
	return as.kv.Update(alarmsKey, func(cur json.RawMessage) (json.RawMessage, error) {
		var alarms []models.Alarm
		if cur != nil {
			if err := json.Unmarshal(cur, &alarms); err != nil {
				return nil, fmt.Errorf("decoding alarm list: %w", err)
			}
		}
		alarms = append(alarms, alarm)
		return json.Marshal(alarms)
	})
}

// Update applies fn to the alarm with the given id and persists the list as
// one read-modify-write step. It returns the alarm as persisted. This is the
// primitive the alert-shown guard relies on: marking an alarm alerted and
// observing whether it already was happen under the same lock.
func (as *AlarmStore) Update(id string, fn func(*models.Alarm)) (models.Alarm, error) {
	var updated models.Alarm
	err := as.kv.Update(alarmsKey, func(cur json.RawMessage) (json.RawMessage, error) {
		var alarms []models.Alarm
		if cur != nil {
			if err := json.Unmarshal(cur, &alarms); err != nil {
				return nil, fmt.Errorf("decoding alarm list: %w", err)
			}
		}
		for i := range alarms {
			if alarms[i].ID == id {
				fn(&alarms[i])
				updated = alarms[i]
				return json.Marshal(alarms)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	if err != nil {
		return models.Alarm{}, err
	}
	return updated, nil
}

// Delete removes an alarm and releases every per-device settings key written
// for it.
func (as *AlarmStore) Delete(id string) error {
	err := as.kv.Update(alarmsKey, func(cur json.RawMessage) (json.RawMessage, error) {
		var alarms []models.Alarm
		if cur != nil {
			if err := json.Unmarshal(cur, &alarms); err != nil {
				return nil, fmt.Errorf("decoding alarm list: %w", err)
			}
		}
		for i := range alarms {
			if alarms[i].ID == id {
				alarms = append(alarms[:i], alarms[i+1:]...)
				return json.Marshal(alarms)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	if err != nil {
		return err
	}

	keys, err := as.kv.Keys(deviceSettingsPrefix + id + "/")
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := as.kv.Remove(k); err != nil {
			return err
		}
	}
	return nil
}

// SetDeviceSettings records the default action for a device within an alarm.
// Written when the user selects a device for the alarm.
func (as *AlarmStore) SetDeviceSettings(alarmID, deviceID string, action models.DeviceAction) error {
	return as.kv.Set(deviceSettingsKey(alarmID, deviceID), action)
}

// DeviceSettings returns the stored default action for a device within an
// alarm, if one was written.
func (as *AlarmStore) DeviceSettings(alarmID, deviceID string) (models.DeviceAction, bool, error) {
	var action models.DeviceAction
	ok, err := as.kv.Get(deviceSettingsKey(alarmID, deviceID), &action)
	return action, ok, err
}

// RemoveDeviceSettings releases the settings key for a device within an alarm.
func (as *AlarmStore) RemoveDeviceSettings(alarmID, deviceID string) error {
	return as.kv.Remove(deviceSettingsKey(alarmID, deviceID))
}

func deviceSettingsKey(alarmID, deviceID string) string {
	return deviceSettingsPrefix + alarmID + "/" + deviceID
}
