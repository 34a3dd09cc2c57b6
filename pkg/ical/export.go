// Package ical bridges the alarm list to iCalendar feeds: exporting alarms
// as daily-recurring events and importing feed events as alarm templates.
package ical

import (
	"io"
	"time"

	"github.com/emersion/go-ical"

	"wakelight/pkg/models"
)

// Export writes the enabled alarms as a VCALENDAR with one daily-recurring
// VEVENT per alarm. The alarm id becomes the UID so repeated exports stay
// stable.
func Export(w io.Writer, alarms []models.Alarm) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//wakelight//EN")

	now := time.Now()
	for _, a := range alarms {
		if !a.Enabled {
			continue
		}

		summary := a.Label
		if summary == "" {
			summary = "Alarm"
		}

		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, a.ID)
		ev.Props.SetText(ical.PropSummary, summary)
		ev.Props.SetDateTime(ical.PropDateTimeStamp, now)
		ev.Props.SetDateTime(ical.PropDateTimeStart, a.Time)
		ev.Props.SetText(ical.PropRecurrenceRule, "FREQ=DAILY")
		cal.Children = append(cal.Children, ev.Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}
