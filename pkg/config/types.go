package config

import (
	"errors"
	"time"

	"github.com/HughKantsime/printfarm/pkg/alerting"
	"github.com/HughKantsime/printfarm/pkg/discovery"
	"github.com/HughKantsime/printfarm/pkg/models"
)

const (
	defaultListenAddr   = ":8090"
	defaultGrpcAddr     = ":50051"
	defaultRetention    = 90 * 24 * time.Hour
	defaultHistoryDepth = 360
)

var errDBPathRequired = errors.New("db_path is required")

// DaemonConfig is the single JSON file the daemon boots from.
type DaemonConfig struct {
	ListenAddr string `json:"listen_addr"` // HTTP API
	GrpcAddr   string `json:"grpc_addr"`   // lifecycle gRPC + health
	DBPath     string `json:"db_path"`

	// Supervisor cadences. Zero values fall back to the monitor defaults.
	HealthInterval    models.Duration `json:"health_interval,omitempty"`
	DiscoveryInterval models.Duration `json:"discovery_interval,omitempty"`
	StatusInterval    models.Duration `json:"status_interval,omitempty"`
	ReconnectDelay    models.Duration `json:"reconnect_delay,omitempty"`

	// StopCodes extends the built-in print-stopping error allow-list.
	StopCodes []string `json:"stop_codes,omitempty"`

	// HistoryDepth is samples kept per printer in the telemetry ring.
	HistoryDepth int `json:"history_depth,omitempty"`

	// Retention bounds acked alerts and archived jobs on disk.
	Retention models.Duration `json:"retention,omitempty"`

	Alerting  *alerting.Config       `json:"alerting,omitempty"`
	Discovery *discovery.Config      `json:"discovery,omitempty"`
	Security  *models.SecurityConfig `json:"security,omitempty"`
}

// Validate implements config.Validator. It fills defaults for everything
// the file may omit; only the database path has no sane default.
func (c *DaemonConfig) Validate() error {
	if c.DBPath == "" {
		return errDBPathRequired
	}

	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.GrpcAddr == "" {
		c.GrpcAddr = defaultGrpcAddr
	}

	if c.HistoryDepth <= 0 {
		c.HistoryDepth = defaultHistoryDepth
	}

	if c.Retention <= 0 {
		c.Retention = models.Duration(defaultRetention)
	}

	if c.Alerting != nil {
		if err := c.Alerting.Validate(); err != nil {
			return err
		}
	}

	return nil
}
