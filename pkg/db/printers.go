// Package db pkg/db/printers.go
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/HughKantsime/printfarm/pkg/models"
)

// ListPrinters returns the fleet registry, optionally filtered to enabled
// printers.
func (db *DB) ListPrinters(enabledOnly bool) ([]models.Printer, error) {
	query := `
        SELECT id, name, kind, host, port, serial, access_code, api_key, enabled, created_at
        FROM printers
    `
	if enabledOnly {
		query += " WHERE enabled = 1"
	}

	query += " ORDER BY id"

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w printers: %w", errFailedToQuery, err)
	}
	defer CloseRows(rows)

	var printers []models.Printer

	for rows.Next() {
		var p models.Printer

		if err := rows.Scan(&p.ID, &p.Name, &p.Kind, &p.Host, &p.Port,
			&p.Serial, &p.AccessCode, &p.APIKey, &p.Enabled, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w printer row: %w", errFailedToScan, err)
		}

		printers = append(printers, p)
	}

	return printers, rows.Err()
}

// GetPrinter looks up one printer by id.
func (db *DB) GetPrinter(id string) (*models.Printer, error) {
	const query = `
        SELECT id, name, kind, host, port, serial, access_code, api_key, enabled, created_at
        FROM printers
        WHERE id = ?
    `

	var p models.Printer

	err := db.QueryRow(query, id).Scan(&p.ID, &p.Name, &p.Kind, &p.Host, &p.Port,
		&p.Serial, &p.AccessCode, &p.APIKey, &p.Enabled, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w printer: %w", errFailedToQuery, err)
	}

	return &p, nil
}

// UpsertPrinter inserts or replaces a registry row. Discovery uses it to
// surface unregistered devices as disabled entries.
func (db *DB) UpsertPrinter(p *models.Printer) error {
	const query = `
        INSERT INTO printers (id, name, kind, host, port, serial, access_code, api_key, enabled)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            host = excluded.host,
            port = excluded.port,
            serial = excluded.serial
    `

	_, err := db.Exec(query, p.ID, p.Name, p.Kind, p.Host, p.Port,
		p.Serial, p.AccessCode, p.APIKey, p.Enabled)
	if err != nil {
		return fmt.Errorf("%w printer: %w", errFailedToInsert, err)
	}

	return nil
}

// CloseRows closes rows and logs any error. Kept as a helper so query
// methods can defer it in one line.
func CloseRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("Error closing rows: %v", err)
	}
}
