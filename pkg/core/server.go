// Package core pkg/core/server.go assembles the daemon: storage, event bus,
// protocol adapters, supervisor, alerting, consumers, and the HTTP API,
// bound together behind lifecycle.Service.
package core

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/HughKantsime/printfarm/pkg/alerting"
	"github.com/HughKantsime/printfarm/pkg/api"
	"github.com/HughKantsime/printfarm/pkg/config"
	"github.com/HughKantsime/printfarm/pkg/consumers"
	"github.com/HughKantsime/printfarm/pkg/db"
	"github.com/HughKantsime/printfarm/pkg/discovery"
	"github.com/HughKantsime/printfarm/pkg/events"
	"github.com/HughKantsime/printfarm/pkg/monitor"
	"github.com/HughKantsime/printfarm/pkg/probe"
	"github.com/HughKantsime/printfarm/pkg/telemetry"
)

const (
	cleanupInterval = time.Hour
	pingTimeout     = 2 * time.Second
)

// Server owns the daemon's moving parts and implements lifecycle.Service.
type Server struct {
	config     *config.DaemonConfig
	db         db.Service
	bus        *events.Bus
	supervisor *monitor.Supervisor
	sweeper    *discovery.Sweeper
	dispatcher *alerting.Dispatcher
	mqttSender *alerting.MQTTSender
	apiServer  *api.Server

	wg sync.WaitGroup
}

// NewServer opens storage and wires every component; nothing runs until
// Start.
func NewServer(cfg *config.DaemonConfig) (*Server, error) {
	database, err := db.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	bus := events.NewBus()
	tele := telemetry.NewManager(cfg.HistoryDepth)

	supervisor := monitor.NewSupervisor(database, bus, initRegistry(), tele,
		probe.NewPinger(pingTimeout), monitor.Config{
			HealthInterval:    cfg.HealthInterval.Std(),
			DiscoveryInterval: cfg.DiscoveryInterval.Std(),
			StatusInterval:    cfg.StatusInterval.Std(),
			ReconnectDelay:    cfg.ReconnectDelay.Std(),
			StopCodes:         cfg.StopCodes,
		})

	s := &Server{
		config:     cfg,
		db:         database,
		bus:        bus,
		supervisor: supervisor,
		sweeper:    discovery.NewSweeper(database, bus, cfg.Discovery),
		apiServer:  api.NewServer(supervisor, database),
	}

	if err := s.setupAlerting(); err != nil {
		_ = database.Close()

		return nil, err
	}

	// Consumers read the bus; attach order does not matter.
	consumers.NewArchiver(database).Attach(bus)
	consumers.NewRelay(database).Attach(bus)
	consumers.NewCareCounters(database).Attach(bus)

	return s, nil
}

func (s *Server) setupAlerting() error {
	var cfg alerting.Config
	if s.config.Alerting != nil {
		cfg = *s.config.Alerting
	}

	senders := make([]alerting.Sender, 0, 4)

	if cfg.Webhook != nil {
		senders = append(senders, alerting.NewWebhookSender(cfg.Webhook))
	}

	if cfg.SMTP != nil {
		senders = append(senders, alerting.NewEmailSender(*cfg.SMTP))
	}

	if cfg.Push != nil {
		senders = append(senders, alerting.NewPushSender(s.db, *cfg.Push))
	}

	if cfg.MQTT != nil {
		s.mqttSender = alerting.NewMQTTSender(*cfg.MQTT)
		senders = append(senders, s.mqttSender)
	}

	dispatcher, err := alerting.NewDispatcher(s.db, cfg, senders...)
	if err != nil {
		return fmt.Errorf("failed to build alert dispatcher: %w", err)
	}

	dispatcher.Attach(s.bus)
	s.dispatcher = dispatcher

	return nil
}

// Start runs the supervisor, the discovery sweeper, and the retention
// janitor until ctx is canceled. The first component error comes back;
// plain cancellation returns nil.
func (s *Server) Start(ctx context.Context) error {
	log.Printf("Starting printfarm core")

	errCh := make(chan error, 2)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		if err := s.supervisor.Run(ctx); err != nil {
			errCh <- fmt.Errorf("supervisor: %w", err)
		}
	}()

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		if err := s.sweeper.Run(ctx); err != nil {
			errCh <- fmt.Errorf("discovery: %w", err)
		}
	}()

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.janitor(ctx)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop waits for the Run goroutines, flushes in-flight alert sends, and
// closes storage.
func (s *Server) Stop(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("Shutdown timed out waiting for workers: %v", ctx.Err())
	}

	s.dispatcher.Stop()

	if s.mqttSender != nil {
		s.mqttSender.Close()
	}

	return s.db.Close()
}

// APIHandler exposes the HTTP API for the lifecycle server.
func (s *Server) APIHandler() http.Handler {
	return s.apiServer.Handler()
}

// janitor prunes acked alerts and old archive rows on a slow cadence.
func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.db.CleanOldData(s.config.Retention.Std()); err != nil {
				log.Printf("Data cleanup failed: %v", err)
			}
		}
	}
}
