// Package telemetry pkg/telemetry/manager.go
package telemetry

import (
	"sync"

	"github.com/HughKantsime/printfarm/pkg/models"
)

const defaultRetention = 360 // 30 minutes of samples at a 5s cadence

// Manager keeps a per-printer ring of status samples for the history API.
type Manager struct {
	printers  sync.Map // printerID -> *printerHistory
	retention int
}

type printerHistory struct {
	mu     sync.RWMutex
	buffer *RingBuffer
}

// NewManager creates a manager keeping retention samples per printer. A
// non-positive retention falls back to the default.
func NewManager(retention int) *Manager {
	if retention <= 0 {
		retention = defaultRetention
	}

	return &Manager{retention: retention}
}

// Record stores one sample for a printer, creating its ring on first use.
func (m *Manager) Record(printerID string, s models.StatusSample) {
	h, _ := m.printers.LoadOrStore(printerID, &printerHistory{
		buffer: NewRingBuffer(m.retention),
	})

	ph := h.(*printerHistory)

	ph.mu.Lock()
	defer ph.mu.Unlock()

	ph.buffer.Add(s)
}

// History returns the stored samples for a printer, newest first, or nil
// for a printer that never reported.
func (m *Manager) History(printerID string) []models.StatusSample {
	h, ok := m.printers.Load(printerID)
	if !ok {
		return nil
	}

	ph := h.(*printerHistory)

	ph.mu.RLock()
	defer ph.mu.RUnlock()

	return ph.buffer.Points()
}

// Drop discards the history for a printer removed from the fleet.
func (m *Manager) Drop(printerID string) {
	m.printers.Delete(printerID)
}
