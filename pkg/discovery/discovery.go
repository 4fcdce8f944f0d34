// Package discovery pkg/discovery/discovery.go
//
// Periodic UDP broadcast sweep for printers that answer the resin
// discovery probe but are not registered in the fleet yet. Hits are
// announced once per process as printer.discovered events; registering
// the printer is an operator decision, not ours.
package discovery

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/HughKantsime/printfarm/pkg/events"
	"github.com/HughKantsime/printfarm/pkg/models"
	"github.com/HughKantsime/printfarm/pkg/protocol/sdcp"
)

const (
	defaultInterval = 5 * time.Minute
	defaultWindow   = 3 * time.Second

	// Broadcasts wake every device on the segment, so sweeps stay capped
	// no matter how low the configured interval goes.
	minBroadcastGap = 30 * time.Second

	sourceName = "discovery"
)

// Prober collects discovery replies for one broadcast window.
type Prober func(ctx context.Context, window time.Duration) ([]sdcp.DiscoveredPrinter, error)

// Registry is the fleet slice used to filter replies from printers that
// are already configured.
type Registry interface {
	ListPrinters(enabledOnly bool) ([]models.Printer, error)
}

// Publisher receives the announcement events.
type Publisher interface {
	Publish(evt events.Event)
}

// Config tunes the sweep cadence.
type Config struct {
	Interval models.Duration `json:"interval,omitempty"`
	Window   models.Duration `json:"window,omitempty"`
}

// Sweeper broadcasts the discovery probe on a timer and publishes one
// printer.discovered event per new device.
type Sweeper struct {
	registry  Registry
	bus       Publisher
	probe     Prober
	interval  time.Duration
	window    time.Duration
	limiter   *rate.Limiter
	announced map[string]bool
}

// NewSweeper builds a sweeper over the fleet registry. A nil cfg gets
// the default cadence.
func NewSweeper(registry Registry, bus Publisher, cfg *Config) *Sweeper {
	interval := defaultInterval
	window := defaultWindow

	if cfg != nil && cfg.Interval > 0 {
		interval = time.Duration(cfg.Interval)
	}

	if cfg != nil && cfg.Window > 0 {
		window = time.Duration(cfg.Window)
	}

	return &Sweeper{
		registry:  registry,
		bus:       bus,
		probe:     sdcp.Discover,
		interval:  interval,
		window:    window,
		limiter:   rate.NewLimiter(rate.Every(minBroadcastGap), 1),
		announced: make(map[string]bool),
	}
}

// Run sweeps immediately, then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if !s.limiter.Allow() {
		log.Printf("Discovery: sweep skipped, broadcast cap in effect")
		return
	}

	found, err := s.probe(ctx, s.window)
	if err != nil {
		log.Printf("Discovery sweep failed: %v", err)
		return
	}

	if len(found) == 0 {
		return
	}

	known, err := s.knownIdentities()
	if err != nil {
		log.Printf("Discovery: failed to read registry: %v", err)
		return
	}

	for _, printer := range found {
		if s.announced[printer.MainboardID] || known[printer.MainboardID] || known[printer.Host] {
			continue
		}

		s.announced[printer.MainboardID] = true

		log.Printf("Discovery: unregistered printer %q at %s", printer.Name, printer.Host)

		s.bus.Publish(events.New(events.TypePrinterDiscovered, sourceName, "", map[string]interface{}{
			"name":         printer.Name,
			"host":         printer.Host,
			"mainboard_id": printer.MainboardID,
			"brand":        printer.Brand,
			"firmware":     printer.Firmware,
		}))
	}
}

// knownIdentities returns the hosts and serials of registered printers,
// disabled ones included. A disabled printer is still not a discovery.
func (s *Sweeper) knownIdentities() (map[string]bool, error) {
	printers, err := s.registry.ListPrinters(false)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(printers)*2)

	for _, p := range printers {
		if p.Host != "" {
			known[p.Host] = true
		}

		if p.Serial != "" {
			known[p.Serial] = true
		}
	}

	return known, nil
}
