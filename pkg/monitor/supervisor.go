// Package monitor pkg/monitor/supervisor.go
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/HughKantsime/printfarm/pkg/events"
	"github.com/HughKantsime/printfarm/pkg/jobs"
	"github.com/HughKantsime/printfarm/pkg/models"
	"github.com/HughKantsime/printfarm/pkg/protocol"
	"github.com/HughKantsime/printfarm/pkg/telemetry"
)

const (
	defaultHealthInterval    = 30 * time.Second
	defaultDiscoveryInterval = 60 * time.Second
	defaultStatusInterval    = 2 * time.Second
	defaultReconnectDelay    = 5 * time.Second
)

var (
	// ErrUnknownPrinter is returned for IDs with no running worker.
	ErrUnknownPrinter = errors.New("unknown printer")

	errFailedToLoadPrinters = errors.New("failed to load printer registry")
)

// Config tunes the supervisor's sweep cadences and reconnect policy. Zero
// fields fall back to defaults.
type Config struct {
	HealthInterval    time.Duration
	DiscoveryInterval time.Duration
	StatusInterval    time.Duration
	ReconnectDelay    time.Duration

	// StopCodes extends the built-in print-stopping error allow-list.
	StopCodes []string
}

func (c *Config) normalize() {
	if c.HealthInterval <= 0 {
		c.HealthInterval = defaultHealthInterval
	}

	if c.DiscoveryInterval <= 0 {
		c.DiscoveryInterval = defaultDiscoveryInterval
	}

	if c.StatusInterval <= 0 {
		c.StatusInterval = defaultStatusInterval
	}

	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = defaultReconnectDelay
	}

	if len(c.StopCodes) == 0 {
		c.StopCodes = jobs.DefaultStopCodes
	}
}

// Supervisor owns one worker per enabled printer. It reconciles the worker
// set against the registry on a discovery sweep and forces reconnects on a
// health sweep. All worker mutation happens on the Run goroutine; the map
// lock is for readers on API goroutines.
type Supervisor struct {
	store     Store
	bus       *events.Bus
	registry  protocol.Registry
	telemetry *telemetry.Manager
	pinger    Reachability
	cfg       Config

	mu      sync.RWMutex
	workers map[string]*printerWorker
}

// NewSupervisor wires a supervisor; call Run to start it.
func NewSupervisor(store Store, bus *events.Bus, registry protocol.Registry,
	tele *telemetry.Manager, pinger Reachability, cfg Config) *Supervisor {
	cfg.normalize()

	return &Supervisor{
		store:     store,
		bus:       bus,
		registry:  registry,
		telemetry: tele,
		pinger:    pinger,
		cfg:       cfg,
		workers:   make(map[string]*printerWorker),
	}
}

// Run starts workers for the current fleet and loops over the health and
// discovery sweeps until ctx is done. The initial registry read must
// succeed; later sweep failures are logged and retried.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.syncWorkers(ctx); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadPrinters, err)
	}

	healthTicker := time.NewTicker(s.cfg.HealthInterval)
	defer healthTicker.Stop()

	discoveryTicker := time.NewTicker(s.cfg.DiscoveryInterval)
	defer discoveryTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stopAll()
			return nil
		case <-healthTicker.C:
			s.healthSweep()
		case <-discoveryTicker.C:
			if err := s.syncWorkers(ctx); err != nil {
				log.Printf("Discovery sweep failed: %v", err)
			}
		}
	}
}

// syncWorkers reconciles running workers against the enabled printers in
// the registry: new printers get workers, removed or reconfigured ones are
// torn down (a reconfigured printer restarts on the next line).
func (s *Supervisor) syncWorkers(ctx context.Context) error {
	printers, err := s.store.ListPrinters(true)
	if err != nil {
		return err
	}

	desired := make(map[string]models.Printer, len(printers))
	for _, p := range printers {
		desired[p.ID] = p
	}

	var stale []*printerWorker

	s.mu.Lock()
	for id, w := range s.workers {
		if p, ok := desired[id]; ok && p == w.printer {
			continue
		}

		stale = append(stale, w)
		delete(s.workers, id)
	}
	s.mu.Unlock()

	for _, w := range stale {
		s.stopWorker(w)
	}

	for _, p := range printers {
		s.mu.RLock()
		_, running := s.workers[p.ID]
		s.mu.RUnlock()

		if running {
			continue
		}

		if err := s.startWorker(ctx, p); err != nil {
			log.Printf("Printer %s: cannot start worker: %v", p.ID, err)
		}
	}

	return nil
}

func (s *Supervisor) startWorker(ctx context.Context, printer models.Printer) error {
	adapter, err := s.registry.Get(printer)
	if err != nil {
		return err
	}

	detector := jobs.NewDetector(printer.ID, s.bus, s.store, jobs.NewLinker(s.store), s.cfg.StopCodes)

	workerCtx, cancel := context.WithCancel(ctx)

	w := &printerWorker{
		printer:        printer,
		adapter:        adapter,
		detector:       detector,
		bus:            s.bus,
		telemetry:      s.telemetry,
		pinger:         s.pinger,
		statusInterval: s.cfg.StatusInterval,
		reconnectDelay: s.cfg.ReconnectDelay,
		cancel:         cancel,
		done:           make(chan struct{}),
		reconnectCh:    make(chan struct{}, 1),
	}

	s.mu.Lock()
	s.workers[printer.ID] = w
	s.mu.Unlock()

	go w.run(workerCtx)

	log.Printf("Printer %s (%s): worker started", printer.ID, printer.Kind)

	return nil
}

func (s *Supervisor) stopWorker(w *printerWorker) {
	w.cancel()
	<-w.done

	s.telemetry.Drop(w.printer.ID)

	log.Printf("Printer %s: worker stopped", w.printer.ID)
}

func (s *Supervisor) stopAll() {
	s.mu.Lock()
	workers := make([]*printerWorker, 0, len(s.workers))

	for id, w := range s.workers {
		workers = append(workers, w)
		delete(s.workers, id)
	}
	s.mu.Unlock()

	for _, w := range workers {
		s.stopWorker(w)
	}
}

// healthSweep schedules a reconnect for every worker whose transport is
// down or whose device has been silent past the protocol's staleness
// window. The reconnect itself runs on the worker goroutine.
func (s *Supervisor) healthSweep() {
	now := time.Now()

	s.mu.RLock()
	workers := make([]*printerWorker, 0, len(s.workers))

	for _, w := range s.workers {
		workers = append(workers, w)
	}
	s.mu.RUnlock()

	for _, w := range workers {
		if w.healthy(now) {
			continue
		}

		w.requestReconnect()
	}
}

func (s *Supervisor) worker(printerID string) (*printerWorker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.workers[printerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrinter, printerID)
	}

	return w, nil
}

// Status returns the live snapshot for a printer. The status value is
// always usable; the error only reports an unknown printer.
func (s *Supervisor) Status(printerID string) (models.CanonicalStatus, error) {
	w, err := s.worker(printerID)
	if err != nil {
		return models.Offline(), err
	}

	return w.adapter.Status(), nil
}

// History returns the telemetry ring for a printer, newest first.
func (s *Supervisor) History(printerID string) []models.StatusSample {
	return s.telemetry.History(printerID)
}

// Pause forwards a pause to the printer's adapter.
func (s *Supervisor) Pause(ctx context.Context, printerID string) error {
	w, err := s.worker(printerID)
	if err != nil {
		return err
	}

	return w.adapter.Pause(ctx)
}

// Resume forwards a resume to the printer's adapter.
func (s *Supervisor) Resume(ctx context.Context, printerID string) error {
	w, err := s.worker(printerID)
	if err != nil {
		return err
	}

	return w.adapter.Resume(ctx)
}

// Cancel forwards a cancel to the printer's adapter.
func (s *Supervisor) Cancel(ctx context.Context, printerID string) error {
	w, err := s.worker(printerID)
	if err != nil {
		return err
	}

	return w.adapter.Cancel(ctx)
}

// SetTemperature forwards a temperature target to the printer's adapter.
func (s *Supervisor) SetTemperature(ctx context.Context, printerID, tool string, celsius float64) error {
	w, err := s.worker(printerID)
	if err != nil {
		return err
	}

	return w.adapter.SetTemperature(ctx, tool, celsius)
}
