package engine_test

import (
	"context"
	"fmt"
	"sync"

	"wakelight/pkg/alert"
	"wakelight/pkg/models"
	"wakelight/pkg/store"
)

// fakeStore is an in-memory AlarmStore with the same read-modify-write
// semantics as the real one.
type fakeStore struct {
	mu        sync.Mutex
	alarms    []models.Alarm
	listErr   error
	updateErr error
}

func newFakeStore(alarms ...models.Alarm) *fakeStore {
	return &fakeStore{alarms: alarms}
}

func (s *fakeStore) List() ([]models.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Alarm, len(s.alarms))
	copy(out, s.alarms)
	return out, nil
}

func (s *fakeStore) Update(id string, fn func(*models.Alarm)) (models.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return models.Alarm{}, s.updateErr
	}
	for i := range s.alarms {
		if s.alarms[i].ID == id {
			fn(&s.alarms[i])
			return s.alarms[i], nil
		}
	}
	return models.Alarm{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
}

// alarm returns a copy of the stored alarm for assertions.
func (s *fakeStore) alarm(id string) models.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alarms {
		if a.ID == id {
			return a
		}
	}
	return models.Alarm{}
}

// command is one recorded gateway call.
type command struct {
	Device string
	Kind   string // "power", "brightness", "color"
	Value  int
}

// fakeGateway records every command and can fail per device. onSend, when
// set, observes each call before it is recorded.
type fakeGateway struct {
	mu       sync.Mutex
	commands []command
	fail     map[string]bool
	onSend   func(c command)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{fail: map[string]bool{}}
}

func (g *fakeGateway) send(c command) error {
	if g.onSend != nil {
		g.onSend(c)
	}
	g.mu.Lock()
	g.commands = append(g.commands, c)
	fail := g.fail[c.Device]
	g.mu.Unlock()
	if fail {
		return fmt.Errorf("device %s unreachable", c.Device)
	}
	return nil
}

func (g *fakeGateway) PowerSwitch(_ context.Context, _, device string, on bool) error {
	v := 0
	if on {
		v = 1
	}
	return g.send(command{Device: device, Kind: "power", Value: v})
}

func (g *fakeGateway) Brightness(_ context.Context, _, device string, level int) error {
	return g.send(command{Device: device, Kind: "brightness", Value: level})
}

func (g *fakeGateway) ColorRGB(_ context.Context, _, device string, rgb int) error {
	return g.send(command{Device: device, Kind: "color", Value: rgb})
}

// forDevice returns the recorded commands for one device, in call order.
func (g *fakeGateway) forDevice(device string) []command {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []command
	for _, c := range g.commands {
		if c.Device == device {
			out = append(out, c)
		}
	}
	return out
}

func (g *fakeGateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.commands)
}

// fakeSounder records playback transitions.
type fakeSounder struct {
	mu       sync.Mutex
	started  []string
	stops    int
	startErr error
}

func (s *fakeSounder) Start(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started = append(s.started, ref)
	return nil
}

func (s *fakeSounder) Stop() {
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
}

// fakeNotifier records raised and dismissed alerts.
type fakeNotifier struct {
	mu        sync.Mutex
	raised    []alert.Alert
	dismissed []string
}

func (n *fakeNotifier) Raise(a alert.Alert) {
	n.mu.Lock()
	n.raised = append(n.raised, a)
	n.mu.Unlock()
}

func (n *fakeNotifier) Dismiss(alarmID string) {
	n.mu.Lock()
	n.dismissed = append(n.dismissed, alarmID)
	n.mu.Unlock()
}

// raisedIDs returns the alarm ids of the raised alerts, safe to call while a
// dispatch is still running.
func (n *fakeNotifier) raisedIDs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, a := range n.raised {
		out = append(out, a.AlarmID)
	}
	return out
}
