package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HughKantsime/printfarm/pkg/db"
	"github.com/HughKantsime/printfarm/pkg/events"
	"github.com/HughKantsime/printfarm/pkg/models"
	"github.com/HughKantsime/printfarm/pkg/protocol"
	"github.com/HughKantsime/printfarm/pkg/telemetry"
)

const kindStub = models.Kind("stub")

var errConnectRefused = errors.New("connect refused")

type stubAdapter struct {
	mu          sync.Mutex
	connected   bool
	failConnect bool
	connects    int
	disconnects int
	commands    []string
	status      models.CanonicalStatus
	lastIngest  time.Time
}

func newStubAdapter() *stubAdapter {
	return &stubAdapter{status: models.Offline()}
}

func (a *stubAdapter) Connect(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.connects++

	if a.failConnect {
		return errConnectRefused
	}

	a.connected = true
	a.lastIngest = time.Now()
	a.status = models.CanonicalStatus{State: models.StateIdle, UpdatedAt: time.Now()}

	return nil
}

func (a *stubAdapter) Disconnect() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.disconnects++
	a.connected = false
}

func (a *stubAdapter) Status() models.CanonicalStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.status
}

func (a *stubAdapter) LastIngest() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lastIngest
}

func (a *stubAdapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.connected
}

func (a *stubAdapter) Pause(context.Context) error  { return a.command("pause") }
func (a *stubAdapter) Resume(context.Context) error { return a.command("resume") }
func (a *stubAdapter) Cancel(context.Context) error { return a.command("cancel") }

func (a *stubAdapter) SetTemperature(_ context.Context, _ string, _ float64) error {
	return a.command("temperature")
}

func (a *stubAdapter) command(verb string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.commands = append(a.commands, verb)

	return nil
}

func (a *stubAdapter) setConnected(connected bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.connected = connected
	if connected {
		a.lastIngest = time.Now()
	}
}

func (a *stubAdapter) setFailConnect(fail bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failConnect = fail
}

func (a *stubAdapter) connectCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.connects
}

type stubStore struct {
	mu       sync.Mutex
	printers []models.Printer
	listErr  error
}

func (s *stubStore) ListPrinters(bool) ([]models.Printer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	out := make([]models.Printer, len(s.printers))
	copy(out, s.printers)

	return out, nil
}

func (s *stubStore) setPrinters(printers []models.Printer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.printers = printers
}

func (s *stubStore) OpenJob(string, string, time.Time) (int64, error) { return 1, nil }

func (s *stubStore) GetOpenJob(string) (*models.PrintJob, error) { return nil, db.ErrNotFound }

func (s *stubStore) CloseJob(int64, models.JobStatus, time.Time, string) error { return nil }

func (s *stubStore) CloseJobAndSchedule(int64, models.JobStatus, time.Time, string,
	int64, models.ScheduleStatus) error {
	return nil
}

func (s *stubStore) LinkJobToSchedule(int64, int64) error { return nil }

func (s *stubStore) ListPendingSchedules(string) ([]models.ScheduledJob, error) { return nil, nil }

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func (r *eventRecorder) find(eventType string) (events.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.events {
		if e.Type == eventType {
			return e, true
		}
	}

	return events.Event{}, false
}

func (r *eventRecorder) has(eventType string) bool {
	_, ok := r.find(eventType)
	return ok
}

type fixedPinger struct {
	up bool
}

func (p *fixedPinger) Ping(context.Context, string) (bool, time.Duration, error) {
	return p.up, time.Millisecond, nil
}

func stubPrinter(id string) models.Printer {
	return models.Printer{ID: id, Name: "printer " + id, Kind: kindStub, Host: "10.0.0.1", Enabled: true}
}

func fastConfig() Config {
	return Config{
		HealthInterval:    time.Minute,
		DiscoveryInterval: time.Minute,
		StatusInterval:    10 * time.Millisecond,
		ReconnectDelay:    time.Millisecond,
	}
}

func newTestSupervisor(t *testing.T, store *stubStore, registry protocol.Registry,
	pinger Reachability, cfg Config) (*Supervisor, *eventRecorder) {
	t.Helper()

	bus := events.NewBus()
	rec := &eventRecorder{}
	bus.Subscribe(events.TypeWildcard, "recorder", rec.record)

	s := NewSupervisor(store, bus, registry, telemetry.NewManager(16), pinger, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		_ = s.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-runDone
	})

	return s, rec
}

func singleAdapterRegistry(adapter *stubAdapter) protocol.Registry {
	registry := protocol.NewRegistry()
	registry.Register(kindStub, func(models.Printer) (protocol.Adapter, error) {
		return adapter, nil
	})

	return registry
}

func TestSupervisorStartsWorkerAndServesStatus(t *testing.T) {
	adapter := newStubAdapter()
	store := &stubStore{printers: []models.Printer{stubPrinter("p1")}}

	s, _ := newTestSupervisor(t, store, singleAdapterRegistry(adapter), nil, fastConfig())

	require.Eventually(t, func() bool {
		status, err := s.Status("p1")
		return err == nil && status.State == models.StateIdle
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, adapter.connectCount())

	_, err := s.Status("ghost")
	assert.ErrorIs(t, err, ErrUnknownPrinter)
}

func TestSupervisorRunFailsWhenRegistryUnreadable(t *testing.T) {
	store := &stubStore{listErr: errors.New("disk gone")}
	s := NewSupervisor(store, events.NewBus(), protocol.NewRegistry(), telemetry.NewManager(16), nil, fastConfig())

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errFailedToLoadPrinters)
}

func TestSupervisorPublishesOfflineWithProbeDiagnosis(t *testing.T) {
	adapter := newStubAdapter()
	store := &stubStore{printers: []models.Printer{stubPrinter("p1")}}
	pinger := &fixedPinger{up: true}

	_, rec := newTestSupervisor(t, store, singleAdapterRegistry(adapter), pinger, fastConfig())

	require.Eventually(t, func() bool { return adapter.Connected() }, time.Second, 10*time.Millisecond)

	adapter.setConnected(false)

	require.Eventually(t, func() bool {
		return rec.has(events.TypePrinterOffline)
	}, time.Second, 10*time.Millisecond)

	offline, _ := rec.find(events.TypePrinterOffline)
	assert.Equal(t, true, offline.Data["host_reachable"])
	assert.Equal(t, "host up, service unresponsive", offline.Data["diagnosis"])

	adapter.setConnected(true)

	require.Eventually(t, func() bool {
		return rec.has(events.TypePrinterRecovered)
	}, time.Second, 10*time.Millisecond)
}

func TestHealthSweepReconnectsDeadTransport(t *testing.T) {
	adapter := newStubAdapter()
	adapter.setFailConnect(true)

	store := &stubStore{printers: []models.Printer{stubPrinter("p1")}}

	cfg := fastConfig()
	cfg.HealthInterval = 20 * time.Millisecond

	newTestSupervisor(t, store, singleAdapterRegistry(adapter), nil, cfg)

	// The initial connect fails, then every sweep retries.
	require.Eventually(t, func() bool {
		return adapter.connectCount() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	adapter.setFailConnect(false)

	require.Eventually(t, func() bool { return adapter.Connected() }, 2*time.Second, 10*time.Millisecond)
}

func TestDiscoverySweepAddsAndRemovesWorkers(t *testing.T) {
	registry := protocol.NewRegistry()
	registry.Register(kindStub, func(models.Printer) (protocol.Adapter, error) {
		return newStubAdapter(), nil
	})

	store := &stubStore{printers: []models.Printer{stubPrinter("p1")}}

	cfg := fastConfig()
	cfg.DiscoveryInterval = 20 * time.Millisecond

	s, _ := newTestSupervisor(t, store, registry, nil, cfg)

	require.Eventually(t, func() bool {
		_, err := s.Status("p1")
		return err == nil
	}, time.Second, 10*time.Millisecond)

	store.setPrinters([]models.Printer{stubPrinter("p1"), stubPrinter("p2")})

	require.Eventually(t, func() bool {
		_, err := s.Status("p2")
		return err == nil
	}, time.Second, 10*time.Millisecond)

	store.setPrinters([]models.Printer{stubPrinter("p2")})

	require.Eventually(t, func() bool {
		_, err := s.Status("p1")
		return errors.Is(err, ErrUnknownPrinter)
	}, time.Second, 10*time.Millisecond)
}

func TestSupervisorCommandPassthrough(t *testing.T) {
	adapter := newStubAdapter()
	store := &stubStore{printers: []models.Printer{stubPrinter("p1")}}

	s, _ := newTestSupervisor(t, store, singleAdapterRegistry(adapter), nil, fastConfig())

	require.Eventually(t, func() bool {
		_, err := s.Status("p1")
		return err == nil
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Pause(context.Background(), "p1"))
	require.NoError(t, s.Cancel(context.Background(), "p1"))

	adapter.mu.Lock()
	commands := append([]string(nil), adapter.commands...)
	adapter.mu.Unlock()

	assert.Equal(t, []string{"pause", "cancel"}, commands)

	assert.ErrorIs(t, s.Pause(context.Background(), "ghost"), ErrUnknownPrinter)
}

func TestWorkerRecordsTelemetry(t *testing.T) {
	adapter := newStubAdapter()
	store := &stubStore{printers: []models.Printer{stubPrinter("p1")}}

	s, _ := newTestSupervisor(t, store, singleAdapterRegistry(adapter), nil, fastConfig())

	require.Eventually(t, func() bool {
		return len(s.History("p1")) >= 2
	}, time.Second, 10*time.Millisecond)

	samples := s.History("p1")
	assert.Equal(t, models.StateIdle, samples[0].State)
}
