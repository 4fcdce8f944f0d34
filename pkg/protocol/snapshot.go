// Package protocol pkg/protocol/snapshot.go
package protocol

import (
	"sync"
	"time"

	"github.com/HughKantsime/printfarm/pkg/models"
)

// Snapshot guards one printer's canonical status behind a lock. Adapters
// mutate it from their transport goroutine; the supervisor and API read
// it from theirs. The zero value is unusable; use NewSnapshot.
type Snapshot struct {
	mu         sync.RWMutex
	status     models.CanonicalStatus
	lastIngest time.Time
}

// NewSnapshot starts every printer out as offline.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		status: models.Offline(),
	}
}

// Get returns the current status by value.
func (s *Snapshot) Get() models.CanonicalStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// Replace swaps the whole snapshot and records the ingest time. Used by
// full-snapshot and polled protocols.
func (s *Snapshot) Replace(status models.CanonicalStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status.UpdatedAt = time.Now()
	s.status = status
	s.lastIngest = status.UpdatedAt
}

// Merge applies a partial delta to the running snapshot and records the
// ingest time. Used by delta protocols; fields the delta does not carry
// keep their prior values.
func (s *Snapshot) Merge(apply func(*models.CanonicalStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apply(&s.status)
	s.status.UpdatedAt = time.Now()
	s.lastIngest = s.status.UpdatedAt
}

// MarkOffline flips the state to OFFLINE with a last-error annotation.
// It does not advance the ingest time since no device message arrived.
func (s *Snapshot) MarkOffline(lastErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.State = models.StateOffline
	s.status.LastError = lastErr
	s.status.UpdatedAt = time.Now()
}

// LastIngest is the time of the last parsed device message.
func (s *Snapshot) LastIngest() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastIngest
}
