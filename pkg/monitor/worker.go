// Package monitor pkg/monitor/worker.go
package monitor

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/HughKantsime/printfarm/pkg/events"
	"github.com/HughKantsime/printfarm/pkg/jobs"
	"github.com/HughKantsime/printfarm/pkg/models"
	"github.com/HughKantsime/printfarm/pkg/protocol"
	"github.com/HughKantsime/printfarm/pkg/telemetry"
)

const (
	eventSource  = "monitor"
	probeTimeout = 2 * time.Second
)

// printerWorker owns one printer: its adapter, its detector and its share
// of the telemetry. Everything except healthy and requestReconnect runs on
// the worker goroutine.
type printerWorker struct {
	printer        models.Printer
	adapter        protocol.Adapter
	detector       *jobs.Detector
	bus            *events.Bus
	telemetry      *telemetry.Manager
	pinger         Reachability
	statusInterval time.Duration
	reconnectDelay time.Duration

	cancel      context.CancelFunc
	done        chan struct{}
	reconnectCh chan struct{}

	// online tracks the last observed connectivity for edge events. Worker
	// goroutine only. It starts true so a printer that is down at startup
	// produces an offline event on the first observation.
	online bool

	reconnecting    int32
	connectedAtNano int64
}

func (w *printerWorker) run(ctx context.Context) {
	defer close(w.done)

	w.online = true

	if err := w.adapter.Connect(ctx); err != nil {
		log.Printf("Printer %s: connect failed: %v", w.printer.ID, err)
	} else {
		atomic.StoreInt64(&w.connectedAtNano, time.Now().UnixNano())
	}

	ticker := time.NewTicker(w.statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.adapter.Disconnect()
			return
		case <-w.reconnectCh:
			w.reconnect(ctx)
			atomic.StoreInt32(&w.reconnecting, 0)
		case <-ticker.C:
			w.observe(ctx)
		}
	}
}

// observe feeds the current snapshot through the detector and telemetry,
// and publishes connectivity edges.
func (w *printerWorker) observe(ctx context.Context) {
	status := w.adapter.Status()

	w.detector.Observe(status)

	w.telemetry.Record(w.printer.ID, models.StatusSample{
		Timestamp:  time.Now(),
		State:      status.State,
		Progress:   status.Progress,
		NozzleTemp: status.NozzleTemp,
		BedTemp:    status.BedTemp,
	})

	connected := w.adapter.Connected()

	switch {
	case connected && !w.online:
		w.online = true
		w.bus.Publish(events.New(events.TypePrinterRecovered, eventSource, w.printer.ID,
			map[string]interface{}{"printer_name": w.printer.Name}))
	case !connected && w.online:
		w.online = false
		w.publishOffline(ctx, status)
	}
}

// publishOffline emits the offline event, annotated with an ICMP probe so
// "machine down" and "machine up, printer service dead" alert differently.
func (w *printerWorker) publishOffline(ctx context.Context, status models.CanonicalStatus) {
	data := map[string]interface{}{
		"printer_name": w.printer.Name,
		"host":         w.printer.Host,
	}

	if status.LastError != "" {
		data["last_error"] = status.LastError
	}

	if w.pinger != nil {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		up, _, err := w.pinger.Ping(probeCtx, w.printer.Host)
		cancel()

		if err != nil {
			log.Printf("Printer %s: reachability probe failed: %v", w.printer.ID, err)
		} else {
			data["host_reachable"] = up

			if up {
				data["diagnosis"] = "host up, service unresponsive"
			} else {
				data["diagnosis"] = "host unreachable"
			}
		}
	}

	w.bus.Publish(events.New(events.TypePrinterOffline, eventSource, w.printer.ID, data))
}

// healthy is called from the supervisor's sweep goroutine. Freshness is
// measured against the later of the last device message and the last
// successful connect, so a link that just came up is not torn down before
// its first report.
func (w *printerWorker) healthy(now time.Time) bool {
	if !w.adapter.Connected() {
		return false
	}

	baseline := w.adapter.LastIngest()

	if connectedAt := time.Unix(0, atomic.LoadInt64(&w.connectedAtNano)); connectedAt.After(baseline) {
		baseline = connectedAt
	}

	return now.Sub(baseline) <= protocol.Staleness(w.printer.Kind)
}

// requestReconnect asks the worker goroutine to cycle the transport. The
// flag stays set until the attempt finishes so overlapping sweeps cannot
// queue a second cycle.
func (w *printerWorker) requestReconnect() {
	if !atomic.CompareAndSwapInt32(&w.reconnecting, 0, 1) {
		return
	}

	log.Printf("Printer %s: unhealthy, scheduling reconnect", w.printer.ID)

	select {
	case w.reconnectCh <- struct{}{}:
	default:
		atomic.StoreInt32(&w.reconnecting, 0)
	}
}

// reconnect tears the transport down, waits out the reconnect delay plus
// the protocol's settle window, and dials again. A failure is left for the
// next health sweep to retry.
func (w *printerWorker) reconnect(ctx context.Context) {
	w.adapter.Disconnect()

	wait := w.reconnectDelay + protocol.SettleDelay(w.printer.Kind)

	select {
	case <-ctx.Done():
		return
	case <-time.After(wait):
	}

	if err := w.adapter.Connect(ctx); err != nil {
		log.Printf("Printer %s: reconnect failed: %v", w.printer.ID, err)
		return
	}

	atomic.StoreInt64(&w.connectedAtNano, time.Now().UnixNano())

	log.Printf("Printer %s: reconnected", w.printer.ID)
}
