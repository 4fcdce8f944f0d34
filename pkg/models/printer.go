// Package models pkg/models/printer.go
package models

import (
	"encoding/json"
	"time"
)

// Kind identifies the wire protocol a printer speaks.
type Kind string

const (
	KindBambu Kind = "bambu"
	KindSDCP  Kind = "sdcp"
	KindOcto  Kind = "octo"
)

// PrinterState is the canonical device state shared by every protocol.
type PrinterState string

const (
	StateIdle     PrinterState = "IDLE"
	StatePrinting PrinterState = "PRINTING"
	StatePaused   PrinterState = "PAUSED"
	StateError    PrinterState = "ERROR"
	StateOffline  PrinterState = "OFFLINE"
	StateUnknown  PrinterState = "UNKNOWN"
)

// Printer is one configured device in the fleet registry.
type Printer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Kind       Kind      `json:"kind"`
	Host       string    `json:"host"`
	Port       int       `json:"port,omitempty"`
	Serial     string    `json:"serial,omitempty"`
	AccessCode string    `json:"access_code,omitempty"`
	APIKey     string    `json:"api_key,omitempty"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

// CanonicalStatus is a point-in-time snapshot of a printer, normalized
// across protocols. Accessors on adapters always return a value; a printer
// that has never reported starts out as Offline().
type CanonicalStatus struct {
	State        PrinterState    `json:"state"`
	Progress     float64         `json:"progress"`
	CurrentLayer int             `json:"current_layer"`
	TotalLayers  int             `json:"total_layers"`
	NozzleTemp   float64         `json:"nozzle_temp"`
	BedTemp      float64         `json:"bed_temp"`
	RemainingSec int             `json:"remaining_sec"`
	FileName     string          `json:"file_name,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	LastError    string          `json:"last_error,omitempty"`
	Raw          json.RawMessage `json:"raw,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Offline returns the default snapshot for a printer with no transport.
func Offline() CanonicalStatus {
	return CanonicalStatus{
		State:     StateOffline,
		UpdatedAt: time.Now(),
	}
}
