// Package db pkg/db/db.go provides SQLite persistence for printfarm
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var (
	errFailedToBeginTx   = errors.New("failed to begin transaction")
	errFailedToScan      = errors.New("failed to scan")
	errFailedToQuery     = errors.New("failed to query")
	errFailedToInsert    = errors.New("failed to insert")
	errFailedToUpdate    = errors.New("failed to update")
	errFailedToDelete    = errors.New("failed to delete")
	errFailedToInit      = errors.New("failed to initialize schema")
	errFailedToEnableWAL = errors.New("failed to enable WAL mode")
	errFailedOpenDB      = errors.New("failed to open database")
	errFailedToClean     = errors.New("failed to clean")
)

const (
	// SQL statements for database initialization.
	createTablesSQL = `
	-- Fleet registry
	CREATE TABLE IF NOT EXISTS printers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		host TEXT NOT NULL,
		port INTEGER NOT NULL DEFAULT 0,
		serial TEXT NOT NULL DEFAULT '',
		access_code TEXT NOT NULL DEFAULT '',
		api_key TEXT NOT NULL DEFAULT '',
		enabled BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Observed print jobs
	CREATE TABLE IF NOT EXISTS print_jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		printer_id TEXT NOT NULL,
		job_name TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'running',
		schedule_id INTEGER,
		error_code TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (printer_id) REFERENCES printers(id) ON DELETE CASCADE
	);

	-- At most one open job per printer
	CREATE UNIQUE INDEX IF NOT EXISTS idx_print_jobs_open
		ON print_jobs(printer_id) WHERE ended_at IS NULL;

	-- Scheduled work supplied by the scheduling collaborator
	CREATE TABLE IF NOT EXISTS scheduled_jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		printer_id TEXT NOT NULL,
		item_name TEXT NOT NULL DEFAULT '',
		model_name TEXT NOT NULL DEFAULT '',
		file_name TEXT NOT NULL DEFAULT '',
		total_layers INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- In-app alert records, one row per targeted user
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		alert_type TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT 'info',
		printer_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		acknowledged BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Per-user channel routing; empty table means in-app for everyone
	CREATE TABLE IF NOT EXISTS alert_prefs (
		user_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		alert_type TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		PRIMARY KEY (user_id, channel, alert_type)
	);

	-- Alert recipients
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		webhook_url TEXT NOT NULL DEFAULT '',
		webhook_kind TEXT NOT NULL DEFAULT 'generic'
	);

	-- Stored web push targets
	CREATE TABLE IF NOT EXISTS push_subscriptions (
		user_id TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		key_auth TEXT NOT NULL,
		key_p256dh TEXT NOT NULL,
		PRIMARY KEY (user_id, endpoint)
	);

	-- Short-TTL cross-process event relay
	CREATE TABLE IF NOT EXISTS event_relay (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Immutable job history
	CREATE TABLE IF NOT EXISTS job_archive (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		printer_id TEXT NOT NULL,
		job_name TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		error_code TEXT NOT NULL DEFAULT '',
		schedule_id INTEGER,
		archived_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Maintenance usage tallies
	CREATE TABLE IF NOT EXISTS care_counters (
		printer_id TEXT PRIMARY KEY,
		print_seconds INTEGER NOT NULL DEFAULT 0,
		jobs_completed INTEGER NOT NULL DEFAULT 0,
		jobs_failed INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Indexes for better query performance
	CREATE INDEX IF NOT EXISTS idx_print_jobs_printer_time
		ON print_jobs(printer_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_scheduled_jobs_printer_status
		ON scheduled_jobs(printer_id, status);
	CREATE INDEX IF NOT EXISTS idx_alerts_user_created
		ON alerts(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_event_relay_created
		ON event_relay(created_at);
	CREATE INDEX IF NOT EXISTS idx_job_archive_printer_time
		ON job_archive(printer_id, ended_at);

	-- Enable WAL mode for better concurrent access
	PRAGMA journal_mode=WAL;
	PRAGMA foreign_keys=ON;
	`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
}

// New creates a new database connection and initializes the schema.
func New(dbPath string) (Service, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedOpenDB, err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToEnableWAL, err)
	}

	db := &DB{sqlDB}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

func rollbackUnlessCommitted(tx *sql.Tx, committed *bool) {
	if *committed {
		return
	}

	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		log.Printf("Error rolling back transaction: %v", rbErr)
	}
}
