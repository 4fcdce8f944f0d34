// Package db pkg/db/relay.go
package db

import (
	"fmt"
	"time"
)

// RelayEvent is one row of the cross-process relay table.
type RelayEvent struct {
	ID        int64     `json:"id"`
	EventType string    `json:"event_type"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// AppendRelayEvent writes one relay row and returns its id.
func (db *DB) AppendRelayEvent(eventType, payload string, createdAt time.Time) (int64, error) {
	const query = `
        INSERT INTO event_relay (event_type, payload, created_at)
        VALUES (?, ?, ?)
    `

	result, err := db.Exec(query, eventType, payload, createdAt)
	if err != nil {
		return 0, fmt.Errorf("%w relay event: %w", errFailedToInsert, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get relay id: %w", err)
	}

	return id, nil
}

// RelayEventsAfter returns rows with id greater than afterID, oldest
// first. UI pollers pass their last seen id.
func (db *DB) RelayEventsAfter(afterID int64, limit int) ([]RelayEvent, error) {
	const query = `
        SELECT id, event_type, payload, created_at
        FROM event_relay
        WHERE id > ?
        ORDER BY id
        LIMIT ?
    `

	rows, err := db.Query(query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w relay events: %w", errFailedToQuery, err)
	}
	defer CloseRows(rows)

	var relayEvents []RelayEvent

	for rows.Next() {
		var e RelayEvent

		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w relay row: %w", errFailedToScan, err)
		}

		relayEvents = append(relayEvents, e)
	}

	return relayEvents, rows.Err()
}

// PruneRelayEvents deletes rows older than the cutoff and reports how many
// went away.
func (db *DB) PruneRelayEvents(cutoff time.Time) (int64, error) {
	result, err := db.Exec(`DELETE FROM event_relay WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune relay events: %w", err)
	}

	pruned, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return pruned, nil
}
