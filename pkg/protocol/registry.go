// Package protocol pkg/protocol/registry.go
package protocol

import (
	"fmt"
	"time"

	"github.com/HughKantsime/printfarm/pkg/models"
)

var (
	errNoAdapter = fmt.Errorf("no adapter found")
)

// Factory is a function type returning an Adapter for one printer.
type Factory func(printer models.Printer) (Adapter, error)

// Registry defines how to store and retrieve adapter factories.
type Registry interface {
	Register(kind models.Kind, factory Factory)
	Get(printer models.Printer) (Adapter, error)
}

// adapterRegistry is a simple in-memory implementation of Registry.
type adapterRegistry struct {
	factories map[models.Kind]Factory
}

func NewRegistry() Registry {
	return &adapterRegistry{
		factories: make(map[models.Kind]Factory),
	}
}

func (r *adapterRegistry) Register(kind models.Kind, factory Factory) {
	r.factories[kind] = factory
}

func (r *adapterRegistry) Get(printer models.Printer) (Adapter, error) {
	f, ok := r.factories[printer.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNoAdapter, printer.Kind)
	}

	return f(printer)
}

// Staleness returns how long a protocol may stay silent before the
// supervisor treats the link as dead. Push transports report often, so
// they get tighter windows than polled ones.
func Staleness(kind models.Kind) time.Duration {
	switch kind {
	case models.KindBambu:
		return 60 * time.Second
	case models.KindSDCP:
		return 90 * time.Second
	case models.KindOcto:
		return 120 * time.Second
	default:
		return 120 * time.Second
	}
}

// SettleDelay returns how long to wait between tearing down a transport
// and dialing a replacement. Some firmwares keep the old session
// registered briefly and reject a duplicate.
func SettleDelay(kind models.Kind) time.Duration {
	switch kind {
	case models.KindBambu:
		return 2 * time.Second
	case models.KindSDCP:
		return 3 * time.Second
	default:
		return 0
	}
}
