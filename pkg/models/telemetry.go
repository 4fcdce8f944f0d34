package models

import "time"

// StatusSample is one telemetry observation kept in the per-printer
// history ring.
type StatusSample struct {
	Timestamp  time.Time    `json:"timestamp"`
	State      PrinterState `json:"state"`
	Progress   float64      `json:"progress"`
	NozzleTemp float64      `json:"nozzle_temp"`
	BedTemp    float64      `json:"bed_temp"`
}
