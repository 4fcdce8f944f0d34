// Package api pkg/api/interfaces.go
package api

import (
	"context"

	"github.com/HughKantsime/printfarm/pkg/db"
	"github.com/HughKantsime/printfarm/pkg/models"
)

//go:generate mockgen -destination=mock_monitor.go -package=api github.com/HughKantsime/printfarm/pkg/api Monitor
//go:generate mockgen -destination=mock_store.go -package=api github.com/HughKantsime/printfarm/pkg/api Store

// Monitor is the slice of the fleet supervisor the API reads snapshots
// from and forwards commands to.
type Monitor interface {
	Status(printerID string) (models.CanonicalStatus, error)
	History(printerID string) []models.StatusSample
	Pause(ctx context.Context, printerID string) error
	Resume(ctx context.Context, printerID string) error
	Cancel(ctx context.Context, printerID string) error
	SetTemperature(ctx context.Context, printerID, tool string, celsius float64) error
}

// Store is the persistence slice the API serves.
type Store interface {
	ListPrinters(enabledOnly bool) ([]models.Printer, error)
	RelayEventsAfter(afterID int64, limit int) ([]db.RelayEvent, error)
	ListAlerts(userID string, unackedOnly bool, limit int) ([]models.Alert, error)
	AcknowledgeAlert(alertID int64) error
}
