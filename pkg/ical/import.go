package ical

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"wakelight/pkg/models"
)

// Import fetches an iCal feed and maps every timed event to an alarm
// template: disabled, no devices, wake time taken from the event start.
// The user enables and attaches devices afterwards.
func Import(url string) ([]models.Alarm, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed: %s", resp.Status)
	}

	return Parse(resp.Body)
}

// Parse decodes a calendar stream into alarm templates.
func Parse(r io.Reader) ([]models.Alarm, error) {
	dec := ical.NewDecoder(r)

	var alarms []models.Alarm
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing feed: %w", err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			a, ok := eventToAlarm(comp)
			if !ok {
				continue
			}
			alarms = append(alarms, a)
		}
	}
	return alarms, nil
}

// eventToAlarm maps one VEVENT to an alarm template. Events without a usable
// start time are skipped.
func eventToAlarm(comp *ical.Component) (models.Alarm, bool) {
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return models.Alarm{}, false
	}
	start, err := startProp.DateTime(time.Local)
	if err != nil {
		return models.Alarm{}, false
	}

	label := ""
	if summaryProp := comp.Props.Get(ical.PropSummary); summaryProp != nil {
		label = summaryProp.Value
	}

	return models.Alarm{
		ID:                 uuid.New().String(),
		Time:               start,
		Enabled:            false,
		Sound:              models.SoundNone,
		SnoozeDuration:     models.DefaultSnoozeDuration,
		SnoozeDeviceAction: models.SnoozeActionNone,
		Label:              label,
	}, true
}
