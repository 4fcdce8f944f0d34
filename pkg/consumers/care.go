// Package consumers pkg/consumers/care.go
package consumers

import (
	"log"

	"github.com/HughKantsime/printfarm/pkg/events"
)

const careName = "care"

// CareCounters accumulates per-printer wear figures from closed jobs so
// maintenance schedules can key off real usage instead of wall time.
// Completed and failed runs count; cancellations do not.
type CareCounters struct {
	store CareStore
}

// NewCareCounters builds the care consumer.
func NewCareCounters(store CareStore) *CareCounters {
	return &CareCounters{store: store}
}

// Attach subscribes to the job outcomes that count as wear.
func (c *CareCounters) Attach(bus *events.Bus) {
	bus.Subscribe(events.TypeJobCompleted, careName, c.onJobClosed)
	bus.Subscribe(events.TypeJobFailed, careName, c.onJobClosed)
}

// Detach removes the subscriptions.
func (c *CareCounters) Detach(bus *events.Bus) {
	bus.Unsubscribe(events.TypeJobCompleted, careName)
	bus.Unsubscribe(events.TypeJobFailed, careName)
}

func (c *CareCounters) onJobClosed(evt events.Event) {
	seconds := dataInt64(evt, "duration_sec")

	var completed, failed int64

	switch evt.Type {
	case events.TypeJobCompleted:
		completed = 1
	case events.TypeJobFailed:
		failed = 1
	}

	if err := c.store.AddCareUsage(evt.PrinterID, seconds, completed, failed); err != nil {
		log.Printf("Care: failed to update counters for %s: %v", evt.PrinterID, err)
	}
}
