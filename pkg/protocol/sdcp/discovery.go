// Package sdcp pkg/protocol/sdcp/discovery.go
package sdcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"time"
)

const (
	discoveryPort  = 3000
	discoveryProbe = "M99999"
	maxReplySize   = 8192
)

// DiscoveredPrinter is one reply to the broadcast probe.
type DiscoveredPrinter struct {
	Name        string `json:"name"`
	Host        string `json:"host"`
	MainboardID string `json:"mainboard_id"`
	Brand       string `json:"brand"`
	Firmware    string `json:"firmware"`
}

type discoveryReply struct {
	Data struct {
		Name            string `json:"Name"`
		MachineName     string `json:"MachineName"`
		BrandName       string `json:"BrandName"`
		MainboardIP     string `json:"MainboardIP"`
		MainboardID     string `json:"MainboardID"`
		FirmwareVersion string `json:"FirmwareVersion"`
	} `json:"Data"`
}

// Discover broadcasts the probe and collects replies until the window
// closes. Devices already known to the caller are not filtered here.
func Discover(ctx context.Context, window time.Duration) ([]DiscoveredPrinter, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("failed to open discovery socket: %w", err)
	}

	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("Error closing discovery socket: %v", err)
		}
	}()

	broadcast := &net.UDPAddr{IP: net.IPv4bcast, Port: discoveryPort}

	if _, err := conn.WriteTo([]byte(discoveryProbe), broadcast); err != nil {
		return nil, fmt.Errorf("failed to send discovery probe: %w", err)
	}

	deadline := time.Now().Add(window)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	seen := make(map[string]bool)

	var printers []DiscoveredPrinter

	buf := make([]byte, maxReplySize)

	for {
		if err := ctx.Err(); err != nil {
			return printers, err
		}

		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// Window closed; whatever answered is the result.
				return printers, nil
			}

			return printers, fmt.Errorf("discovery read failed: %w", err)
		}

		printer, err := parseDiscoveryReply(buf[:n], peer)
		if err != nil {
			log.Printf("Discovery: dropping malformed reply from %s: %v", peer, err)
			continue
		}

		if seen[printer.MainboardID] {
			continue
		}

		seen[printer.MainboardID] = true
		printers = append(printers, printer)
	}
}

func parseDiscoveryReply(payload []byte, peer net.Addr) (DiscoveredPrinter, error) {
	var reply discoveryReply

	if err := json.Unmarshal(payload, &reply); err != nil {
		return DiscoveredPrinter{}, fmt.Errorf("invalid discovery reply: %w", err)
	}

	if reply.Data.MainboardID == "" {
		return DiscoveredPrinter{}, errors.New("discovery reply missing mainboard id")
	}

	host := reply.Data.MainboardIP
	if host == "" {
		if udp, ok := peer.(*net.UDPAddr); ok {
			host = udp.IP.String()
		}
	}

	name := reply.Data.Name
	if name == "" {
		name = reply.Data.MachineName
	}

	return DiscoveredPrinter{
		Name:        name,
		Host:        host,
		MainboardID: reply.Data.MainboardID,
		Brand:       reply.Data.BrandName,
		Firmware:    reply.Data.FirmwareVersion,
	}, nil
}
