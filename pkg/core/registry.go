// Package core pkg/core/registry.go
package core

import (
	"github.com/HughKantsime/printfarm/pkg/models"
	"github.com/HughKantsime/printfarm/pkg/protocol"
	"github.com/HughKantsime/printfarm/pkg/protocol/bambu"
	"github.com/HughKantsime/printfarm/pkg/protocol/octo"
	"github.com/HughKantsime/printfarm/pkg/protocol/sdcp"
)

func initRegistry() protocol.Registry {
	registry := protocol.NewRegistry()

	// Register the Bambu MQTT adapter
	registry.Register(models.KindBambu, func(p models.Printer) (protocol.Adapter, error) {
		return bambu.NewAdapter(p)
	})

	// Register the SDCP websocket adapter
	registry.Register(models.KindSDCP, func(p models.Printer) (protocol.Adapter, error) {
		return sdcp.NewAdapter(p)
	})

	// Register the HTTP polling adapter
	registry.Register(models.KindOcto, func(p models.Printer) (protocol.Adapter, error) {
		return octo.NewAdapter(p)
	})

	return registry
}
