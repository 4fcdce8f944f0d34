// Package probe pkg/probe/probe.go
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	protocolICMP   = 1
	defaultTimeout = 2 * time.Second
	maxPacketSize  = 1500
)

var (
	errFailedToResolveHost = fmt.Errorf("failed to resolve host")
	errFailedToListen      = fmt.Errorf("failed to open icmp listener")
	errFailedToSend        = fmt.Errorf("failed to send echo request")
)

// Pinger answers one question about a host: does it respond to ICMP echo.
// The supervisor uses it to tell a dead printer service apart from a dead
// machine. Raw ICMP sockets need CAP_NET_RAW; a pinger on an unprivileged
// process returns errors and callers degrade to "reachability unknown".
type Pinger struct {
	timeout time.Duration
	seq     uint32
}

// NewPinger creates a pinger with the given per-probe timeout.
func NewPinger(timeout time.Duration) *Pinger {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Pinger{timeout: timeout}
}

// Ping sends a single echo request and waits for the matching reply. It
// returns false with a nil error when the host simply does not answer
// within the timeout; errors are reserved for probe failures.
func (p *Pinger) Ping(ctx context.Context, host string) (bool, time.Duration, error) {
	addr, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		return false, 0, fmt.Errorf("%w: %w", errFailedToResolveHost, err)
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return false, 0, fmt.Errorf("%w: %w", errFailedToListen, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	id := os.Getpid() & 0xffff
	seq := int(atomic.AddUint32(&p.seq, 1) & 0xffff)

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: []byte("reachability probe")},
	}

	wire, err := msg.Marshal(nil)
	if err != nil {
		return false, 0, fmt.Errorf("%w: %w", errFailedToSend, err)
	}

	start := time.Now()

	if _, err := conn.WriteTo(wire, addr); err != nil {
		return false, 0, fmt.Errorf("%w: %w", errFailedToSend, err)
	}

	deadline := start.Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	packet := make([]byte, maxPacketSize)

	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return false, 0, fmt.Errorf("%w: %w", errFailedToListen, err)
		}

		n, peer, err := conn.ReadFrom(packet)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return false, 0, nil
			}

			return false, 0, fmt.Errorf("%w: %w", errFailedToListen, err)
		}

		if peer.String() != addr.String() {
			continue
		}

		reply, err := icmp.ParseMessage(protocolICMP, packet[:n])
		if err != nil {
			continue
		}

		if reply.Type != ipv4.ICMPTypeEchoReply {
			continue
		}

		if echo, ok := reply.Body.(*icmp.Echo); ok && echo.ID == id && echo.Seq == seq {
			return true, time.Since(start), nil
		}
	}
}
