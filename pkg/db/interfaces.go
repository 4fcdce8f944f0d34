// Package db pkg/db/interfaces.go
package db

import (
	"time"

	"github.com/HughKantsime/printfarm/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/HughKantsime/printfarm/pkg/db Service

// Service represents all database operations. Consumers depend on the
// slice of this interface they actually use.
type Service interface {
	Close() error

	// Fleet registry.

	ListPrinters(enabledOnly bool) ([]models.Printer, error)
	GetPrinter(id string) (*models.Printer, error)
	UpsertPrinter(p *models.Printer) error

	// Job lifecycle.

	OpenJob(printerID, jobName string, startedAt time.Time) (int64, error)
	GetOpenJob(printerID string) (*models.PrintJob, error)
	GetJob(jobID int64) (*models.PrintJob, error)
	CloseJob(jobID int64, status models.JobStatus, endedAt time.Time, errorCode string) error
	CloseJobAndSchedule(jobID int64, status models.JobStatus, endedAt time.Time,
		errorCode string, scheduleID int64, scheduleStatus models.ScheduleStatus) error
	LinkJobToSchedule(jobID, scheduleID int64) error
	ListPendingSchedules(printerID string) ([]models.ScheduledJob, error)

	// Alerting.

	CreateAlerts(alerts []*models.Alert) error
	ListAlerts(userID string, unackedOnly bool, limit int) ([]models.Alert, error)
	AcknowledgeAlert(alertID int64) error
	ListUsers() ([]models.User, error)
	ListAlertPrefs(alertType string) ([]models.AlertPref, error)
	CountAlertPrefs() (int, error)
	ListPushSubscriptions(userID string) ([]models.PushSubscription, error)
	DeletePushSubscription(endpoint string) error

	// Event relay.

	AppendRelayEvent(eventType, payload string, createdAt time.Time) (int64, error)
	RelayEventsAfter(afterID int64, limit int) ([]RelayEvent, error)
	PruneRelayEvents(cutoff time.Time) (int64, error)

	// History and maintenance.

	ArchiveJob(job *models.ArchivedJob) error
	ListArchivedJobs(printerID string, limit int) ([]models.ArchivedJob, error)
	AddCareUsage(printerID string, printSeconds, completed, failed int64) error
	GetCareCounter(printerID string) (*models.CareCounter, error)
	CleanOldData(retention time.Duration) error
}
