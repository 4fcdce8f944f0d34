// Package models pkg/models/jobs.go
package models

import "time"

// JobStatus is the lifecycle state of a tracked print job.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// PrintJob is one observed print, opened on a detected start and closed on
// a terminal transition. At most one job per printer may be open
// (EndedAt nil) at any time.
type PrintJob struct {
	ID         int64      `json:"id"`
	PrinterID  string     `json:"printer_id"`
	JobName    string     `json:"job_name"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	Status     JobStatus  `json:"status"`
	ScheduleID *int64     `json:"schedule_id,omitempty"`
	ErrorCode  string     `json:"error_code,omitempty"`
}

// ScheduleStatus is the state of a pre-scheduled job as seen by the
// scheduling collaborator.
type ScheduleStatus string

const (
	SchedulePending   ScheduleStatus = "pending"
	SchedulePrinting  ScheduleStatus = "printing"
	ScheduleCompleted ScheduleStatus = "completed"
	ScheduleFailed    ScheduleStatus = "failed"
)

// ScheduledJob is a unit of planned work supplied by the scheduler. The
// linker matches observed prints against its candidate names and layer
// count.
type ScheduledJob struct {
	ID          int64          `json:"id"`
	PrinterID   string         `json:"printer_id"`
	ItemName    string         `json:"item_name"`
	ModelName   string         `json:"model_name"`
	FileName    string         `json:"file_name"`
	TotalLayers int            `json:"total_layers"`
	Status      ScheduleStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ArchivedJob is the immutable history row written when a job closes.
type ArchivedJob struct {
	ID         int64      `json:"id"`
	PrinterID  string     `json:"printer_id"`
	JobName    string     `json:"job_name"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    time.Time  `json:"ended_at"`
	Status     JobStatus  `json:"status"`
	ErrorCode  string     `json:"error_code,omitempty"`
	ScheduleID *int64     `json:"schedule_id,omitempty"`
	ArchivedAt time.Time  `json:"archived_at"`
}

// CareCounter accumulates wear figures per printer for maintenance
// planning.
type CareCounter struct {
	PrinterID     string    `json:"printer_id"`
	PrintSeconds  int64     `json:"print_seconds"`
	JobsCompleted int64     `json:"jobs_completed"`
	JobsFailed    int64     `json:"jobs_failed"`
	UpdatedAt     time.Time `json:"updated_at"`
}
