package db

import (
	"fmt"
	"time"
)

// CleanOldData prunes acknowledged alerts and archived jobs older than the
// retention period. Unacked alerts, open jobs, and the care counters are
// never touched.
func (db *DB) CleanOldData(retention time.Duration) error {
	cutoff := time.Now().Add(-retention)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToBeginTx, err)
	}

	committed := false
	defer rollbackUnlessCommitted(tx, &committed)

	if _, err := tx.Exec(
		"DELETE FROM alerts WHERE acknowledged = 1 AND created_at < ?",
		cutoff,
	); err != nil {
		return fmt.Errorf("%w alerts: %w", errFailedToClean, err)
	}

	if _, err := tx.Exec(
		"DELETE FROM job_archive WHERE archived_at < ?",
		cutoff,
	); err != nil {
		return fmt.Errorf("%w job archive: %w", errFailedToClean, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cleanup: %w", err)
	}

	committed = true

	return nil
}
