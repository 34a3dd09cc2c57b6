package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wakelight/pkg/engine"
	"wakelight/pkg/models"
	"wakelight/pkg/store"
)

func newResponder(st *fakeStore) (*engine.Responder, *fakeGateway, *fakeSounder, *fakeNotifier) {
	gw := newFakeGateway()
	sound := &fakeSounder{}
	notifier := &fakeNotifier{}
	r := engine.NewResponder(st, gw, sound, notifier, testLogger())
	r.Now = func() time.Time { return at(7, 30) }
	return r, gw, sound, notifier
}

func TestStopDisablesAndResets(t *testing.T) {
	a := wakeAlarm("a", 7, 30)
	a.AlertShown = true
	snoozeAt := at(7, 35)
	a.SnoozeTime = &snoozeAt
	st := newFakeStore(a)
	r, _, sound, notifier := newResponder(st)

	require.NoError(t, r.Stop(context.Background(), "a"))

	got := st.alarm("a")
	assert.False(t, got.Enabled)
	assert.False(t, got.AlertShown)
	assert.Nil(t, got.SnoozeTime)
	assert.Equal(t, 1, sound.stops)
	assert.Equal(t, []string{"a"}, notifier.dismissed)

	// A stopped alarm is never due again until re-enabled.
	assert.Empty(t, engine.Evaluate(at(7, 30), []models.Alarm{got}))
}

func TestStopUnknownAlarm(t *testing.T) {
	st := newFakeStore()
	r, _, sound, _ := newResponder(st)

	err := r.Stop(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, sound.stops, "sound must keep playing when the stop did not persist")
}

func TestSnoozeReArmsAlarm(t *testing.T) {
	a := wakeAlarm("a", 7, 30)
	a.AlertShown = true
	st := newFakeStore(a)
	r, gw, sound, notifier := newResponder(st)

	require.NoError(t, r.Snooze(context.Background(), "a", 5, models.SnoozeActionNone))

	got := st.alarm("a")
	require.NotNil(t, got.SnoozeTime)
	assert.Equal(t, at(7, 35), got.SnoozeTime.Local())
	assert.False(t, got.AlertShown)
	assert.True(t, got.Enabled, "snooze must not touch enabled")
	assert.Equal(t, 1, sound.stops)
	assert.Equal(t, []string{"a"}, notifier.dismissed)
	assert.Zero(t, gw.total())

	// Due again at the snooze deadline, not the wake time.
	assert.Empty(t, engine.Evaluate(at(7, 30), []models.Alarm{got}))
	assert.Len(t, engine.Evaluate(at(7, 35), []models.Alarm{got}), 1)
}

func TestSnoozeDeviceActionIssuesOnePowerCommandPerDevice(t *testing.T) {
	a := wakeAlarm("a", 7, 30)
	// Device configured OFF for the trigger; the snooze action overrides it.
	a.Devices = []models.DeviceAction{deviceOff("dev-1"), deviceOn("dev-2", 80, 0xFF0000)}
	st := newFakeStore(a)
	r, gw, _, _ := newResponder(st)

	require.NoError(t, r.Snooze(context.Background(), "a", 5, models.SnoozeActionOn))

	cmds1 := gw.forDevice("dev-1")
	require.Len(t, cmds1, 1)
	assert.Equal(t, command{Device: "dev-1", Kind: "power", Value: 1}, cmds1[0])

	cmds2 := gw.forDevice("dev-2")
	require.Len(t, cmds2, 1)
	assert.Equal(t, command{Device: "dev-2", Kind: "power", Value: 1}, cmds2[0])
}

func TestSnoozeDeviceActionOff(t *testing.T) {
	a := wakeAlarm("a", 7, 30)
	a.Devices = []models.DeviceAction{deviceOn("dev-1", 80, 0xFF0000)}
	st := newFakeStore(a)
	r, gw, _, _ := newResponder(st)

	require.NoError(t, r.Snooze(context.Background(), "a", 5, models.SnoozeActionOff))

	cmds := gw.forDevice("dev-1")
	require.Len(t, cmds, 1)
	assert.Equal(t, command{Device: "dev-1", Kind: "power", Value: 0}, cmds[0])
}

func TestSnoozeDefaultsFromAlarm(t *testing.T) {
	a := wakeAlarm("a", 7, 30)
	a.SnoozeDuration = 12
	a.SnoozeDeviceAction = models.SnoozeActionOff
	a.Devices = []models.DeviceAction{deviceOn("dev-1", 80, 0xFF0000)}
	st := newFakeStore(a)
	r, gw, _, _ := newResponder(st)

	// Zero minutes and empty action fall back to the alarm's settings.
	require.NoError(t, r.Snooze(context.Background(), "a", 0, ""))

	got := st.alarm("a")
	require.NotNil(t, got.SnoozeTime)
	assert.Equal(t, at(7, 42), got.SnoozeTime.Local())

	cmds := gw.forDevice("dev-1")
	require.Len(t, cmds, 1)
	assert.Equal(t, 0, cmds[0].Value)
}

func TestSnoozeStorageFailure(t *testing.T) {
	a := wakeAlarm("a", 7, 30)
	a.Devices = []models.DeviceAction{deviceOn("dev-1", 80, 0xFF0000)}
	st := newFakeStore(a)
	st.updateErr = assert.AnError
	r, gw, sound, _ := newResponder(st)

	err := r.Snooze(context.Background(), "a", 5, models.SnoozeActionOn)
	require.Error(t, err)
	assert.Zero(t, sound.stops)
	assert.Zero(t, gw.total())
}

func TestSnoozeToleratesFailingDevices(t *testing.T) {
	a := wakeAlarm("a", 7, 30)
	a.Devices = []models.DeviceAction{deviceOn("bad", 80, 0xFF0000), deviceOn("good", 80, 0xFF0000)}
	st := newFakeStore(a)
	r, gw, _, _ := newResponder(st)
	gw.fail["bad"] = true

	require.NoError(t, r.Snooze(context.Background(), "a", 5, models.SnoozeActionOn))
	assert.Len(t, gw.forDevice("good"), 1)
}
