// Package consumers pkg/consumers/archive.go
package consumers

import (
	"log"
	"time"

	"github.com/HughKantsime/printfarm/pkg/events"
	"github.com/HughKantsime/printfarm/pkg/models"
)

const archiveName = "archive"

// Archiver writes the immutable history row when a job reaches a terminal
// state. It reads the closed job back from the store rather than trusting
// the event payload, so the archive always mirrors the row that was
// actually committed.
type Archiver struct {
	store ArchiveStore
	now   func() time.Time
}

// NewArchiver builds the archive consumer.
func NewArchiver(store ArchiveStore) *Archiver {
	return &Archiver{store: store, now: time.Now}
}

// Attach subscribes to the three terminal job events.
func (a *Archiver) Attach(bus *events.Bus) {
	bus.Subscribe(events.TypeJobCompleted, archiveName, a.onJobClosed)
	bus.Subscribe(events.TypeJobFailed, archiveName, a.onJobClosed)
	bus.Subscribe(events.TypeJobCancelled, archiveName, a.onJobClosed)
}

// Detach removes the subscriptions.
func (a *Archiver) Detach(bus *events.Bus) {
	bus.Unsubscribe(events.TypeJobCompleted, archiveName)
	bus.Unsubscribe(events.TypeJobFailed, archiveName)
	bus.Unsubscribe(events.TypeJobCancelled, archiveName)
}

func (a *Archiver) onJobClosed(evt events.Event) {
	jobID := dataInt64(evt, "job_id")
	if jobID == 0 {
		log.Printf("Archive: %s event without job_id, skipping", evt.Type)
		return
	}

	job, err := a.store.GetJob(jobID)
	if err != nil {
		log.Printf("Archive: failed to load job %d: %v", jobID, err)
		return
	}

	if job.EndedAt == nil {
		log.Printf("Archive: job %d is still open, skipping", jobID)
		return
	}

	archived := &models.ArchivedJob{
		PrinterID:  job.PrinterID,
		JobName:    job.JobName,
		StartedAt:  job.StartedAt,
		EndedAt:    *job.EndedAt,
		Status:     job.Status,
		ErrorCode:  job.ErrorCode,
		ScheduleID: job.ScheduleID,
		ArchivedAt: a.now(),
	}

	if err := a.store.ArchiveJob(archived); err != nil {
		log.Printf("Archive: failed to write job %d: %v", jobID, err)
	}
}

func dataInt64(evt events.Event, key string) int64 {
	switch v := evt.Data[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
