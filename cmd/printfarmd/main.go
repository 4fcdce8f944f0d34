// cmd/printfarmd/main.go
package main

import (
	"context"
	"flag"
	"log"

	"github.com/HughKantsime/printfarm/pkg/config"
	"github.com/HughKantsime/printfarm/pkg/core"
	"github.com/HughKantsime/printfarm/pkg/lifecycle"
)

func main() {
	log.Printf("Starting printfarm...")

	configPath := flag.String("config", "/etc/printfarm/printfarm.json", "Path to config file")
	flag.Parse()

	var cfg config.DaemonConfig
	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	server, err := core.NewServer(&cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ListenAddr:  cfg.GrpcAddr,
		HTTPAddr:    cfg.ListenAddr,
		HTTPHandler: server.APIHandler(),
		ServiceName: "PrinterMonitor",
		Service:     server,
		Security:    cfg.Security,
	}); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
