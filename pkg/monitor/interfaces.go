// Package monitor pkg/monitor/interfaces.go
package monitor

import (
	"context"
	"time"

	"github.com/HughKantsime/printfarm/pkg/jobs"
	"github.com/HughKantsime/printfarm/pkg/models"
)

// Store is the persistence surface the supervisor needs: the fleet registry
// for discovery sweeps plus the job store its detectors write through.
type Store interface {
	ListPrinters(enabledOnly bool) ([]models.Printer, error)

	jobs.Store
}

// Reachability answers whether a host responds to ICMP echo. Used to
// annotate offline events; a nil prober skips the annotation.
type Reachability interface {
	Ping(ctx context.Context, host string) (bool, time.Duration, error)
}
