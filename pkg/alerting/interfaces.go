// Package alerting pkg/alerting/interfaces.go
package alerting

import (
	"context"

	"github.com/HughKantsime/printfarm/pkg/models"
)

//go:generate mockgen -destination=mock_store.go -package=alerting github.com/HughKantsime/printfarm/pkg/alerting Store

// Store is the persistence slice the dispatcher needs. The sqlite service
// implements it.
type Store interface {
	CreateAlerts(alerts []*models.Alert) error
	ListUsers() ([]models.User, error)
	ListAlertPrefs(alertType string) ([]models.AlertPref, error)
	CountAlertPrefs() (int, error)
	ListPushSubscriptions(userID string) ([]models.PushSubscription, error)
	DeletePushSubscription(endpoint string) error
}

// Sender delivers one alert to one recipient over an external channel.
// Senders are called off the dispatch path and may block on network I/O.
type Sender interface {
	Name() models.Channel
	Send(ctx context.Context, alert *models.Alert, user models.User) error
}
