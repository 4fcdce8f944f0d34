// Package events pkg/events/events.go
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the monitoring core. Consumers subscribe by
// exact type or by TypeWildcard.
const (
	TypeJobStarted        = "job.started"
	TypeJobCompleted      = "job.completed"
	TypeJobFailed         = "job.failed"
	TypeJobCancelled      = "job.cancelled"
	TypeJobPaused         = "job.paused"
	TypeJobProgress       = "job.progress"
	TypePrinterOffline    = "printer.offline"
	TypePrinterRecovered  = "printer.recovered"
	TypePrinterDiscovered = "printer.discovered"

	TypeWildcard = "*"
)

// Event is the ephemeral message passed through the bus. The bus itself
// never persists events; durability is a consumer concern.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	PrinterID string                 `json:"printer_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Time      time.Time              `json:"time"`
}

// New builds an event with a fresh ID and timestamp.
func New(eventType, source, printerID string, data map[string]interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		PrinterID: printerID,
		Data:      data,
		Time:      time.Now(),
	}
}
