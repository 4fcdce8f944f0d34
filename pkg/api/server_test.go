package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/HughKantsime/printfarm/pkg/db"
	"github.com/HughKantsime/printfarm/pkg/models"
	"github.com/HughKantsime/printfarm/pkg/monitor"
)

func newTestServer(t *testing.T) (*Server, *MockMonitor, *MockStore) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mon := NewMockMonitor(ctrl)
	store := NewMockStore(ctrl)

	return NewServer(mon, store), mon, store
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func doJSONRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func TestGetPrintersMergesLiveStatus(t *testing.T) {
	s, mon, store := newTestServer(t)

	store.EXPECT().ListPrinters(false).Return([]models.Printer{
		{ID: "p1", Name: "Voron", Kind: models.KindBambu, Host: "10.0.0.5", Enabled: true},
		{ID: "p2", Name: "Mars", Kind: models.KindSDCP, Host: "10.0.0.6", Enabled: false},
	}, nil)
	mon.EXPECT().Status("p1").Return(models.CanonicalStatus{
		State:    models.StatePrinting,
		Progress: 41.5,
		Raw:      json.RawMessage(`{"print":{"mc_percent":41}}`),
	}, nil)
	mon.EXPECT().Status("p2").Return(models.Offline(), fmt.Errorf("%w: p2", monitor.ErrUnknownPrinter))

	rec := doRequest(t, s, http.MethodGet, "/api/printers")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var got []PrinterSummary

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "Voron", got[0].Name)
	assert.Equal(t, models.StatePrinting, got[0].Status.State)
	assert.Empty(t, got[0].Status.Raw, "raw payload belongs to the status endpoint only")
	assert.Equal(t, models.StateOffline, got[1].Status.State)
}

func TestGetPrintersStoreError(t *testing.T) {
	s, _, store := newTestServer(t)

	store.EXPECT().ListPrinters(false).Return(nil, assert.AnError)

	rec := doRequest(t, s, http.MethodGet, "/api/printers")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetPrinterStatus(t *testing.T) {
	s, mon, _ := newTestServer(t)

	mon.EXPECT().Status("p1").Return(models.CanonicalStatus{
		State:    models.StatePaused,
		Progress: 80,
		FileName: "benchy.gcode",
	}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/printers/p1/status")

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.CanonicalStatus

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.StatePaused, got.State)
	assert.Equal(t, "benchy.gcode", got.FileName)
}

func TestGetPrinterStatusUnknown(t *testing.T) {
	s, mon, _ := newTestServer(t)

	mon.EXPECT().Status("ghost").Return(models.Offline(), fmt.Errorf("%w: ghost", monitor.ErrUnknownPrinter))

	rec := doRequest(t, s, http.MethodGet, "/api/printers/ghost/status")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Printer not found\n", rec.Body.String())
}

func TestGetPrinterHistory(t *testing.T) {
	s, mon, _ := newTestServer(t)

	mon.EXPECT().Status("p1").Return(models.CanonicalStatus{State: models.StateIdle}, nil)
	mon.EXPECT().History("p1").Return([]models.StatusSample{
		{State: models.StatePrinting, Progress: 12},
		{State: models.StatePrinting, Progress: 10},
	})

	rec := doRequest(t, s, http.MethodGet, "/api/printers/p1/history")

	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.StatusSample

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 12.0, got[0].Progress)
}

func TestGetPrinterHistoryEmptyIsArray(t *testing.T) {
	s, mon, _ := newTestServer(t)

	mon.EXPECT().Status("p1").Return(models.CanonicalStatus{State: models.StateIdle}, nil)
	mon.EXPECT().History("p1").Return(nil)

	rec := doRequest(t, s, http.MethodGet, "/api/printers/p1/history")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetPrinterHistoryUnknown(t *testing.T) {
	s, mon, _ := newTestServer(t)

	mon.EXPECT().Status("ghost").Return(models.Offline(), fmt.Errorf("%w: ghost", monitor.ErrUnknownPrinter))

	rec := doRequest(t, s, http.MethodGet, "/api/printers/ghost/history")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostPrinterCommands(t *testing.T) {
	tests := []struct {
		verb   string
		expect func(mon *MockMonitor)
	}{
		{"pause", func(mon *MockMonitor) { mon.EXPECT().Pause(gomock.Any(), "p1").Return(nil) }},
		{"resume", func(mon *MockMonitor) { mon.EXPECT().Resume(gomock.Any(), "p1").Return(nil) }},
		{"cancel", func(mon *MockMonitor) { mon.EXPECT().Cancel(gomock.Any(), "p1").Return(nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.verb, func(t *testing.T) {
			s, mon, _ := newTestServer(t)
			tt.expect(mon)

			rec := doRequest(t, s, http.MethodPost, "/api/printers/p1/commands/"+tt.verb)

			assert.Equal(t, http.StatusAccepted, rec.Code)
		})
	}
}

func TestPostPrinterCommandUnknownVerb(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/printers/p1/commands/reboot")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown command\n", rec.Body.String())
}

func TestPostPrinterCommandUnknownPrinter(t *testing.T) {
	s, mon, _ := newTestServer(t)

	mon.EXPECT().Pause(gomock.Any(), "ghost").Return(fmt.Errorf("%w: ghost", monitor.ErrUnknownPrinter))

	rec := doRequest(t, s, http.MethodPost, "/api/printers/ghost/commands/pause")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostPrinterCommandFailure(t *testing.T) {
	s, mon, _ := newTestServer(t)

	mon.EXPECT().Cancel(gomock.Any(), "p1").Return(errors.New("transport is down"))

	rec := doRequest(t, s, http.MethodPost, "/api/printers/p1/commands/cancel")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPostPrinterTemperature(t *testing.T) {
	s, mon, _ := newTestServer(t)

	mon.EXPECT().SetTemperature(gomock.Any(), "p1", "bed", 60.0).Return(nil)

	rec := doJSONRequest(t, s, http.MethodPost, "/api/printers/p1/temperature",
		`{"tool":"bed","celsius":60}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestPostPrinterTemperatureBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{"tool":`},
		{"unknown tool", `{"tool":"chamber","celsius":40}`},
		{"negative target", `{"tool":"bed","celsius":-5}`},
		{"target too high", `{"tool":"nozzle","celsius":500}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestServer(t)

			rec := doJSONRequest(t, s, http.MethodPost, "/api/printers/p1/temperature", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPostPrinterTemperatureUnknownPrinter(t *testing.T) {
	s, mon, _ := newTestServer(t)

	mon.EXPECT().SetTemperature(gomock.Any(), "ghost", "nozzle", 210.0).
		Return(fmt.Errorf("%w: ghost", monitor.ErrUnknownPrinter))

	rec := doJSONRequest(t, s, http.MethodPost, "/api/printers/ghost/temperature",
		`{"tool":"nozzle","celsius":210}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostPrinterTemperatureAdapterFailure(t *testing.T) {
	s, mon, _ := newTestServer(t)

	mon.EXPECT().SetTemperature(gomock.Any(), "p1", "nozzle", 210.0).
		Return(errors.New("command not supported by this protocol"))

	rec := doJSONRequest(t, s, http.MethodPost, "/api/printers/p1/temperature",
		`{"tool":"nozzle","celsius":210}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetEvents(t *testing.T) {
	s, _, store := newTestServer(t)

	store.EXPECT().RelayEventsAfter(int64(5), 2).Return([]db.RelayEvent{
		{ID: 6, EventType: "job.started", Payload: `{"printer_id":"p1"}`},
		{ID: 7, EventType: "job.completed", Payload: `{"printer_id":"p1"}`},
	}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/events?after=5&limit=2")

	require.Equal(t, http.StatusOK, rec.Code)

	var got []db.RelayEvent

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(6), got[0].ID)
	assert.Equal(t, "job.completed", got[1].EventType)
}

func TestGetEventsDefaultsToStartOfTable(t *testing.T) {
	s, _, store := newTestServer(t)

	store.EXPECT().RelayEventsAfter(int64(0), defaultEventLimit).Return(nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/events")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetEventsCapsLimit(t *testing.T) {
	s, _, store := newTestServer(t)

	store.EXPECT().RelayEventsAfter(int64(0), maxEventLimit).Return(nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/events?limit=9999")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetEventsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"after not a number", "/api/events?after=abc"},
		{"limit not a number", "/api/events?limit=abc"},
		{"limit zero", "/api/events?limit=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestServer(t)

			rec := doRequest(t, s, http.MethodGet, tt.target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetEventsStoreError(t *testing.T) {
	s, _, store := newTestServer(t)

	store.EXPECT().RelayEventsAfter(int64(0), defaultEventLimit).Return(nil, assert.AnError)

	rec := doRequest(t, s, http.MethodGet, "/api/events")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetAlerts(t *testing.T) {
	s, _, store := newTestServer(t)

	store.EXPECT().ListAlerts("u1", true, defaultAlertLimit).Return([]models.Alert{
		{ID: 3, UserID: "u1", AlertType: "job.failed", Title: "Print failed: benchy.gcode"},
	}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/alerts?user=u1&unacked=1")

	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Alert

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Print failed: benchy.gcode", got[0].Title)
}

func TestGetAlertsRequiresUser(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/alerts")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing user parameter\n", rec.Body.String())
}

func TestGetAlertsEmptyIsArray(t *testing.T) {
	s, _, store := newTestServer(t)

	store.EXPECT().ListAlerts("u1", false, defaultAlertLimit).Return(nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/alerts?user=u1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestPostAlertAck(t *testing.T) {
	s, _, store := newTestServer(t)

	store.EXPECT().AcknowledgeAlert(int64(7)).Return(nil)

	rec := doRequest(t, s, http.MethodPost, "/api/alerts/7/ack")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPostAlertAckNotFound(t *testing.T) {
	s, _, store := newTestServer(t)

	store.EXPECT().AcknowledgeAlert(int64(99)).Return(db.ErrNotFound)

	rec := doRequest(t, s, http.MethodPost, "/api/alerts/99/ack")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Alert not found\n", rec.Body.String())
}

func TestPostAlertAckBadID(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/alerts/banana/ack")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
