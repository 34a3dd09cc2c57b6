package alert

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Alert is an actionable notification for a fired alarm. Stop is always
// offered; Snooze only when the alarm has it enabled. The payload carries
// everything a response needs so handlers never depend on in-memory alarm
// state.
type Alert struct {
	AlarmID            string    `json:"alarmId"`
	Title              string    `json:"title"`
	Body               string    `json:"body"`
	RaisedAt           time.Time `json:"raisedAt"`
	Snooze             bool      `json:"snooze"`
	SnoozeDuration     int       `json:"snoozeDuration"`
	SnoozeDeviceAction string    `json:"snoozeDeviceAction"`
}

// Center holds the currently raised alerts. The trigger pipeline raises,
// the response handlers dismiss, and the control API lists them for whoever
// answers.
type Center struct {
	mu     sync.RWMutex
	active map[string]Alert
}

// NewCenter returns an empty alert center.
func NewCenter() *Center {
	return &Center{active: make(map[string]Alert)}
}

// Raise records an alert, replacing any previous one for the same alarm.
func (c *Center) Raise(a Alert) {
	c.mu.Lock()
	c.active[a.AlarmID] = a
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"alarm":  a.AlarmID,
		"snooze": a.Snooze,
	}).Info(a.Body)
}

// Dismiss removes the alert for an alarm. Dismissing an absent alert is a
// no-op.
func (c *Center) Dismiss(alarmID string) {
	c.mu.Lock()
	delete(c.active, alarmID)
	c.mu.Unlock()
}

// Active returns the raised alerts, oldest first.
func (c *Center) Active() []Alert {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Alert, 0, len(c.active))
	for _, a := range c.active {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RaisedAt.Before(out[j].RaisedAt)
	})
	return out
}
