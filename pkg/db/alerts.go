// Package db pkg/db/alerts.go
package db

import (
	"fmt"

	"github.com/HughKantsime/printfarm/pkg/models"
)

// CreateAlerts persists one in-app row per targeted user in a single
// transaction, so a dispatch is either fully recorded or not at all.
func (db *DB) CreateAlerts(alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToBeginTx, err)
	}

	committed := false
	defer rollbackUnlessCommitted(tx, &committed)

	const query = `
        INSERT INTO alerts (user_id, alert_type, severity, printer_id, title, message, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `

	for _, a := range alerts {
		result, err := tx.Exec(query, a.UserID, a.AlertType, a.Severity,
			a.PrinterID, a.Title, a.Message, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("%w alert: %w", errFailedToInsert, err)
		}

		if a.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get alert id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit alerts: %w", err)
	}

	committed = true

	return nil
}

// ListAlerts returns a user's alert digest, newest first.
func (db *DB) ListAlerts(userID string, unackedOnly bool, limit int) ([]models.Alert, error) {
	query := `
        SELECT id, user_id, alert_type, severity, printer_id, title, message, acknowledged, created_at
        FROM alerts
        WHERE user_id = ?
    `
	if unackedOnly {
		query += " AND acknowledged = 0"
	}

	query += " ORDER BY created_at DESC LIMIT ?"

	rows, err := db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w alerts: %w", errFailedToQuery, err)
	}
	defer CloseRows(rows)

	var alerts []models.Alert

	for rows.Next() {
		var a models.Alert

		if err := rows.Scan(&a.ID, &a.UserID, &a.AlertType, &a.Severity,
			&a.PrinterID, &a.Title, &a.Message, &a.Acknowledged, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w alert row: %w", errFailedToScan, err)
		}

		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// AcknowledgeAlert marks one alert as seen.
func (db *DB) AcknowledgeAlert(alertID int64) error {
	result, err := db.Exec(`UPDATE alerts SET acknowledged = 1 WHERE id = ?`, alertID)
	if err != nil {
		return fmt.Errorf("%w alert ack: %w", errFailedToUpdate, err)
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

// ListUsers returns every alert recipient.
func (db *DB) ListUsers() ([]models.User, error) {
	const query = `
        SELECT id, name, email, webhook_url, webhook_kind
        FROM users
        ORDER BY id
    `

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w users: %w", errFailedToQuery, err)
	}
	defer CloseRows(rows)

	var users []models.User

	for rows.Next() {
		var u models.User

		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.WebhookURL, &u.WebhookKind); err != nil {
			return nil, fmt.Errorf("%w user row: %w", errFailedToScan, err)
		}

		users = append(users, u)
	}

	return users, rows.Err()
}

// ListAlertPrefs returns every enabled routing preference for one alert
// type. An empty result across all types means the default routing
// applies: in-app for everyone.
func (db *DB) ListAlertPrefs(alertType string) ([]models.AlertPref, error) {
	const query = `
        SELECT user_id, channel, alert_type, enabled
        FROM alert_prefs
        WHERE alert_type = ? AND enabled = 1
    `

	rows, err := db.Query(query, alertType)
	if err != nil {
		return nil, fmt.Errorf("%w alert prefs: %w", errFailedToQuery, err)
	}
	defer CloseRows(rows)

	var prefs []models.AlertPref

	for rows.Next() {
		var p models.AlertPref

		if err := rows.Scan(&p.UserID, &p.Channel, &p.AlertType, &p.Enabled); err != nil {
			return nil, fmt.Errorf("%w pref row: %w", errFailedToScan, err)
		}

		prefs = append(prefs, p)
	}

	return prefs, rows.Err()
}

// CountAlertPrefs reports whether any routing preferences exist at all.
func (db *DB) CountAlertPrefs() (int, error) {
	var count int

	if err := db.QueryRow(`SELECT COUNT(*) FROM alert_prefs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w pref count: %w", errFailedToQuery, err)
	}

	return count, nil
}

// DeletePushSubscription drops one web push target, usually after the
// push service reports it gone.
func (db *DB) DeletePushSubscription(endpoint string) error {
	if _, err := db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint); err != nil {
		return fmt.Errorf("%w push subscription: %w", errFailedToDelete, err)
	}

	return nil
}

// ListPushSubscriptions returns a user's stored web push targets.
func (db *DB) ListPushSubscriptions(userID string) ([]models.PushSubscription, error) {
	const query = `
        SELECT user_id, endpoint, key_auth, key_p256dh
        FROM push_subscriptions
        WHERE user_id = ?
    `

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w push subscriptions: %w", errFailedToQuery, err)
	}
	defer CloseRows(rows)

	var subs []models.PushSubscription

	for rows.Next() {
		var s models.PushSubscription

		if err := rows.Scan(&s.UserID, &s.Endpoint, &s.KeyAuth, &s.KeyP256); err != nil {
			return nil, fmt.Errorf("%w subscription row: %w", errFailedToScan, err)
		}

		subs = append(subs, s)
	}

	return subs, rows.Err()
}
