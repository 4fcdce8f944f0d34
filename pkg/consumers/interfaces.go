// Package consumers pkg/consumers/interfaces.go
package consumers

import (
	"time"

	"github.com/HughKantsime/printfarm/pkg/models"
)

//go:generate mockgen -destination=mock_stores.go -package=consumers github.com/HughKantsime/printfarm/pkg/consumers ArchiveStore,CareStore,RelayStore

// ArchiveStore is the persistence slice the archive writer needs.
type ArchiveStore interface {
	GetJob(jobID int64) (*models.PrintJob, error)
	ArchiveJob(job *models.ArchivedJob) error
}

// CareStore accumulates wear counters per printer.
type CareStore interface {
	AddCareUsage(printerID string, printSeconds, completed, failed int64) error
}

// RelayStore is the durable relay table other processes poll.
type RelayStore interface {
	AppendRelayEvent(eventType, payload string, createdAt time.Time) (int64, error)
	PruneRelayEvents(cutoff time.Time) (int64, error)
}
