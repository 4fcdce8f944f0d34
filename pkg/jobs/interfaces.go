// Package jobs pkg/jobs/interfaces.go
package jobs

import (
	"time"

	"github.com/HughKantsime/printfarm/pkg/models"
)

//go:generate mockgen -destination=mock_store.go -package=jobs github.com/HughKantsime/printfarm/pkg/jobs Store

// Store is the persistence slice the lifecycle tracker needs. The sqlite
// service implements it.
type Store interface {
	OpenJob(printerID, jobName string, startedAt time.Time) (int64, error)
	GetOpenJob(printerID string) (*models.PrintJob, error)
	CloseJob(jobID int64, status models.JobStatus, endedAt time.Time, errorCode string) error
	CloseJobAndSchedule(jobID int64, status models.JobStatus, endedAt time.Time,
		errorCode string, scheduleID int64, scheduleStatus models.ScheduleStatus) error
	LinkJobToSchedule(jobID, scheduleID int64) error
	ListPendingSchedules(printerID string) ([]models.ScheduledJob, error)
}
