package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wakelight/pkg/alert"
	"wakelight/pkg/api"
	"wakelight/pkg/models"
	"wakelight/pkg/store"
)

type fakeLister struct {
	alarms []models.Alarm
	err    error
}

func (l *fakeLister) List() ([]models.Alarm, error) {
	return l.alarms, l.err
}

// fakeResponder records the last stop/snooze call.
type fakeResponder struct {
	stopped []string
	snoozed struct {
		alarmID string
		minutes int
		action  string
	}
	err error
}

func (r *fakeResponder) Stop(_ context.Context, alarmID string) error {
	if r.err != nil {
		return r.err
	}
	r.stopped = append(r.stopped, alarmID)
	return nil
}

func (r *fakeResponder) Snooze(_ context.Context, alarmID string, minutes int, action string) error {
	if r.err != nil {
		return r.err
	}
	r.snoozed.alarmID = alarmID
	r.snoozed.minutes = minutes
	r.snoozed.action = action
	return nil
}

func newServer(lister *fakeLister, responder *fakeResponder) (*api.Server, *alert.Center) {
	center := alert.NewCenter()
	return api.New(lister, center, responder), center
}

func TestListAlarms(t *testing.T) {
	lister := &fakeLister{alarms: []models.Alarm{
		{ID: "a1", Time: time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC), Enabled: true, Sound: models.SoundNone},
	}}
	srv, _ := newServer(lister, &fakeResponder{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/alarms", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []models.Alarm
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}

func TestListAlarmsEmptyIsArray(t *testing.T) {
	srv, _ := newServer(&fakeLister{}, &fakeResponder{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/alarms", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", buf.String())
}

func TestListAlerts(t *testing.T) {
	srv, center := newServer(&fakeLister{}, &fakeResponder{})
	center.Raise(alert.Alert{AlarmID: "a1", Title: "Wake up", RaisedAt: time.Now()})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/alerts", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []alert.Alert
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].AlarmID)
}

func TestStopAlarm(t *testing.T) {
	responder := &fakeResponder{}
	srv, _ := newServer(&fakeLister{}, responder)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodPost, "/alarms/a1/stop", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"a1"}, responder.stopped)
}

func TestStopUnknownAlarm(t *testing.T) {
	responder := &fakeResponder{err: fmt.Errorf("%w: nope", store.ErrNotFound)}
	srv, _ := newServer(&fakeLister{}, responder)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodPost, "/alarms/nope/stop", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSnoozeAlarmWithBody(t *testing.T) {
	responder := &fakeResponder{}
	srv, _ := newServer(&fakeLister{}, responder)

	body := bytes.NewBufferString(`{"minutes": 10, "deviceAction": "OFF"}`)
	req := httptest.NewRequest(http.MethodPost, "/alarms/a1/snooze", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "a1", responder.snoozed.alarmID)
	assert.Equal(t, 10, responder.snoozed.minutes)
	assert.Equal(t, models.SnoozeActionOff, responder.snoozed.action)
}

func TestSnoozeAlarmWithoutBody(t *testing.T) {
	responder := &fakeResponder{}
	srv, _ := newServer(&fakeLister{}, responder)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodPost, "/alarms/a1/snooze", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "a1", responder.snoozed.alarmID)
	assert.Zero(t, responder.snoozed.minutes)
	assert.Empty(t, responder.snoozed.action)
}

func TestListAlarmsStoreFailure(t *testing.T) {
	srv, _ := newServer(&fakeLister{err: assert.AnError}, &fakeResponder{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/alarms", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
