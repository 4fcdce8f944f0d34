// Package protocol pkg/protocol/interfaces.go
package protocol

import (
	"context"
	"time"

	"github.com/HughKantsime/printfarm/pkg/models"
)

// Adapter speaks one wire protocol to one printer and normalizes raw
// telemetry into a CanonicalStatus snapshot. Transport errors stay inside
// the adapter; the supervisor observes them through Connected and
// LastIngest.
type Adapter interface {
	// Connect dials the device. Safe to call again after Disconnect.
	Connect(ctx context.Context) error

	// Disconnect tears the transport down. Idempotent.
	Disconnect()

	// Status returns the current snapshot. Never blocks, never returns a
	// zero state; before the first report it is models.Offline().
	Status() models.CanonicalStatus

	// LastIngest is the time of the last successfully parsed device
	// message, independent of transport-level connectedness.
	LastIngest() time.Time

	// Connected reports whether the transport believes it is up. A true
	// value with a stale LastIngest means the link silently stalled.
	Connected() bool

	// Device commands. Adapters return an error when the verb is not
	// supported by the protocol or the device rejects it.
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Cancel(ctx context.Context) error
	SetTemperature(ctx context.Context, tool string, celsius float64) error
}
