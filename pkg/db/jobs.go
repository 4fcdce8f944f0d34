// Package db pkg/db/jobs.go
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HughKantsime/printfarm/pkg/models"
)

// OpenJob inserts a new running job row and returns its id. The partial
// unique index on open jobs makes a second open row for the same printer
// fail; callers close the stale row first.
func (db *DB) OpenJob(printerID, jobName string, startedAt time.Time) (int64, error) {
	const query = `
        INSERT INTO print_jobs (printer_id, job_name, started_at, status)
        VALUES (?, ?, ?, ?)
    `

	result, err := db.Exec(query, printerID, jobName, startedAt, models.JobRunning)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: printer %s", ErrOpenJobExists, printerID)
		}

		return 0, fmt.Errorf("%w print job: %w", errFailedToInsert, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get job id: %w", err)
	}

	return id, nil
}

// GetOpenJob returns the printer's open job, or ErrNotFound when every
// job is closed.
func (db *DB) GetOpenJob(printerID string) (*models.PrintJob, error) {
	const query = `
        SELECT id, printer_id, job_name, started_at, ended_at, status, schedule_id, error_code
        FROM print_jobs
        WHERE printer_id = ? AND ended_at IS NULL
    `

	job, err := scanJob(db.QueryRow(query, printerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w open job: %w", errFailedToQuery, err)
	}

	return job, nil
}

// GetJob returns one job by id.
func (db *DB) GetJob(jobID int64) (*models.PrintJob, error) {
	const query = `
        SELECT id, printer_id, job_name, started_at, ended_at, status, schedule_id, error_code
        FROM print_jobs
        WHERE id = ?
    `

	job, err := scanJob(db.QueryRow(query, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w job: %w", errFailedToQuery, err)
	}

	return job, nil
}

// LinkJobToSchedule records the linker's match and marks the schedule row
// as printing, in one transaction.
func (db *DB) LinkJobToSchedule(jobID, scheduleID int64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToBeginTx, err)
	}

	committed := false
	defer rollbackUnlessCommitted(tx, &committed)

	if _, err := tx.Exec(`UPDATE print_jobs SET schedule_id = ? WHERE id = ?`, scheduleID, jobID); err != nil {
		return fmt.Errorf("%w job link: %w", errFailedToUpdate, err)
	}

	if _, err := tx.Exec(`
        UPDATE scheduled_jobs SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
    `, models.SchedulePrinting, scheduleID); err != nil {
		return fmt.Errorf("%w schedule status: %w", errFailedToUpdate, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit link: %w", err)
	}

	committed = true

	return nil
}

// CloseJob ends a job without touching any schedule row.
func (db *DB) CloseJob(jobID int64, status models.JobStatus, endedAt time.Time, errorCode string) error {
	const query = `
        UPDATE print_jobs
        SET ended_at = ?, status = ?, error_code = ?
        WHERE id = ? AND ended_at IS NULL
    `

	result, err := db.Exec(query, endedAt, status, errorCode, jobID)
	if err != nil {
		return fmt.Errorf("%w close job: %w", errFailedToUpdate, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// CloseJobAndSchedule ends a linked job and mutates its schedule row as
// one atomic unit. A crash mid-update never leaves the job closed with
// the schedule still printing or the reverse.
func (db *DB) CloseJobAndSchedule(jobID int64, status models.JobStatus, endedAt time.Time,
	errorCode string, scheduleID int64, scheduleStatus models.ScheduleStatus) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToBeginTx, err)
	}

	committed := false
	defer rollbackUnlessCommitted(tx, &committed)

	result, err := tx.Exec(`
        UPDATE print_jobs
        SET ended_at = ?, status = ?, error_code = ?
        WHERE id = ? AND ended_at IS NULL
    `, endedAt, status, errorCode, jobID)
	if err != nil {
		return fmt.Errorf("%w close job: %w", errFailedToUpdate, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`
        UPDATE scheduled_jobs SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
    `, scheduleStatus, scheduleID); err != nil {
		return fmt.Errorf("%w schedule status: %w", errFailedToUpdate, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit close: %w", err)
	}

	committed = true

	return nil
}

// ListPendingSchedules returns the linker's candidate pool for a printer.
func (db *DB) ListPendingSchedules(printerID string) ([]models.ScheduledJob, error) {
	const query = `
        SELECT id, printer_id, item_name, model_name, file_name, total_layers, status, created_at, updated_at
        FROM scheduled_jobs
        WHERE printer_id = ? AND status = ?
        ORDER BY created_at
    `

	rows, err := db.Query(query, printerID, models.SchedulePending)
	if err != nil {
		return nil, fmt.Errorf("%w schedules: %w", errFailedToQuery, err)
	}
	defer CloseRows(rows)

	var schedules []models.ScheduledJob

	for rows.Next() {
		var s models.ScheduledJob

		if err := rows.Scan(&s.ID, &s.PrinterID, &s.ItemName, &s.ModelName,
			&s.FileName, &s.TotalLayers, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w schedule row: %w", errFailedToScan, err)
		}

		schedules = append(schedules, s)
	}

	return schedules, rows.Err()
}

// ArchiveJob writes the immutable history row for a closed job.
func (db *DB) ArchiveJob(job *models.ArchivedJob) error {
	const query = `
        INSERT INTO job_archive (printer_id, job_name, started_at, ended_at, status, error_code, schedule_id)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `

	_, err := db.Exec(query, job.PrinterID, job.JobName, job.StartedAt,
		job.EndedAt, job.Status, job.ErrorCode, job.ScheduleID)
	if err != nil {
		return fmt.Errorf("%w archive row: %w", errFailedToInsert, err)
	}

	return nil
}

// ListArchivedJobs returns recent history for a printer, newest first.
func (db *DB) ListArchivedJobs(printerID string, limit int) ([]models.ArchivedJob, error) {
	const query = `
        SELECT id, printer_id, job_name, started_at, ended_at, status, error_code, schedule_id, archived_at
        FROM job_archive
        WHERE printer_id = ?
        ORDER BY ended_at DESC
        LIMIT ?
    `

	rows, err := db.Query(query, printerID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w archive: %w", errFailedToQuery, err)
	}
	defer CloseRows(rows)

	var jobs []models.ArchivedJob

	for rows.Next() {
		var (
			j          models.ArchivedJob
			scheduleID sql.NullInt64
		)

		if err := rows.Scan(&j.ID, &j.PrinterID, &j.JobName, &j.StartedAt,
			&j.EndedAt, &j.Status, &j.ErrorCode, &scheduleID, &j.ArchivedAt); err != nil {
			return nil, fmt.Errorf("%w archive row: %w", errFailedToScan, err)
		}

		if scheduleID.Valid {
			j.ScheduleID = &scheduleID.Int64
		}

		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}

// AddCareUsage folds one closed job into the printer's wear counters.
func (db *DB) AddCareUsage(printerID string, printSeconds, completed, failed int64) error {
	const query = `
        INSERT INTO care_counters (printer_id, print_seconds, jobs_completed, jobs_failed, updated_at)
        VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(printer_id) DO UPDATE SET
            print_seconds = print_seconds + excluded.print_seconds,
            jobs_completed = jobs_completed + excluded.jobs_completed,
            jobs_failed = jobs_failed + excluded.jobs_failed,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := db.Exec(query, printerID, printSeconds, completed, failed)
	if err != nil {
		return fmt.Errorf("%w care counter: %w", errFailedToUpdate, err)
	}

	return nil
}

// GetCareCounter returns the wear tally for one printer.
func (db *DB) GetCareCounter(printerID string) (*models.CareCounter, error) {
	const query = `
        SELECT printer_id, print_seconds, jobs_completed, jobs_failed, updated_at
        FROM care_counters
        WHERE printer_id = ?
    `

	var c models.CareCounter

	err := db.QueryRow(query, printerID).Scan(&c.PrinterID, &c.PrintSeconds,
		&c.JobsCompleted, &c.JobsFailed, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w care counter: %w", errFailedToQuery, err)
	}

	return &c, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.PrintJob, error) {
	var (
		job        models.PrintJob
		endedAt    sql.NullTime
		scheduleID sql.NullInt64
	)

	err := row.Scan(&job.ID, &job.PrinterID, &job.JobName, &job.StartedAt,
		&endedAt, &job.Status, &scheduleID, &job.ErrorCode)
	if err != nil {
		return nil, err
	}

	if endedAt.Valid {
		job.EndedAt = &endedAt.Time
	}

	if scheduleID.Valid {
		job.ScheduleID = &scheduleID.Int64
	}

	return &job, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
