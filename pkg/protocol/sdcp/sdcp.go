// Package sdcp pkg/protocol/sdcp/sdcp.go
//
// Push-snapshot adapter. The printer exposes a websocket on port 3030 and
// pushes complete status frames every few seconds; each frame replaces the
// snapshot wholesale. Discovery is a UDP broadcast probe (discovery.go).
package sdcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/HughKantsime/printfarm/pkg/models"
	"github.com/HughKantsime/printfarm/pkg/protocol"
)

const (
	defaultPort    = 3030
	dialTimeout    = 10 * time.Second
	writeTimeout   = 5 * time.Second
	endpointFormat = "ws://%s:%d/websocket"
)

// Print control opcodes.
const (
	cmdPause  = 129
	cmdStop   = 130
	cmdResume = 131
)

var (
	errNotConnected   = errors.New("not connected")
	errUnsupported    = errors.New("command not supported by this protocol")
	errMissingMainbID = errors.New("sdcp printer requires a mainboard id in the serial field")
)

// Adapter implements protocol.Adapter for one SDCP printer.
type Adapter struct {
	printer  models.Printer
	snapshot *protocol.Snapshot

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

// NewAdapter validates the registry row and builds an unconnected adapter.
func NewAdapter(printer models.Printer) (*Adapter, error) {
	if printer.Serial == "" {
		return nil, fmt.Errorf("%w: printer %s", errMissingMainbID, printer.ID)
	}

	return &Adapter{
		printer:  printer,
		snapshot: protocol.NewSnapshot(),
	}, nil
}

// Connect dials the device websocket and starts the frame pump.
func (a *Adapter) Connect(ctx context.Context) error {
	port := a.printer.Port
	if port == 0 {
		port = defaultPort
	}

	endpoint := fmt.Sprintf(endpointFormat, a.printer.Host, port)

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		a.snapshot.MarkOffline(fmt.Sprintf("dial failed: %v", err))

		return fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	a.mu.Lock()
	a.conn = conn
	a.done = make(chan struct{})
	a.mu.Unlock()

	go a.listenForFrames(conn, a.done)

	return nil
}

// Disconnect closes the socket; the pump goroutine exits once its blocked
// read returns. Idempotent.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	conn := a.conn
	done := a.done
	a.conn = nil
	a.done = nil
	a.mu.Unlock()

	if done != nil {
		close(done)
	}

	if conn != nil {
		if err := conn.Close(); err != nil {
			log.Printf("SDCP %s: error closing connection: %v", a.printer.ID, err)
		}
	}
}

// Status returns the last pushed snapshot.
func (a *Adapter) Status() models.CanonicalStatus {
	return a.snapshot.Get()
}

// LastIngest reports when the last status frame was parsed.
func (a *Adapter) LastIngest() time.Time {
	return a.snapshot.LastIngest()
}

// Connected reports whether the socket is open.
func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.conn != nil
}

// Pause asks the device to pause the running print.
func (a *Adapter) Pause(ctx context.Context) error {
	return a.sendCommand(ctx, cmdPause)
}

// Resume continues a paused print.
func (a *Adapter) Resume(ctx context.Context) error {
	return a.sendCommand(ctx, cmdResume)
}

// Cancel stops the running print.
func (a *Adapter) Cancel(ctx context.Context) error {
	return a.sendCommand(ctx, cmdStop)
}

// SetTemperature is not part of the resin printer control surface.
func (a *Adapter) SetTemperature(_ context.Context, _ string, _ float64) error {
	return errUnsupported
}

func (a *Adapter) listenForFrames(conn *websocket.Conn, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
			_, message, err := conn.ReadMessage()
			if err != nil {
				select {
				case <-done:
					// Torn down on purpose; stay quiet.
				default:
					log.Printf("SDCP %s: read error: %v", a.printer.ID, err)
					a.snapshot.MarkOffline(fmt.Sprintf("read error: %v", err))

					a.mu.Lock()
					if a.conn == conn {
						a.conn = nil
					}
					a.mu.Unlock()
				}

				return
			}

			a.handleFrame(message)
		}
	}
}

func (a *Adapter) handleFrame(message []byte) {
	frame, err := parseFrame(message)
	if err != nil {
		log.Printf("SDCP %s: dropping malformed frame: %v", a.printer.ID, err)
		return
	}

	switch {
	case frame.Status != nil:
		status := frameToStatus(frame.Status)
		status.Raw = append([]byte(nil), message...)
		a.snapshot.Replace(status)
	case isErrorNotice(frame):
		// Error notices arrive on their own topic, often seconds before
		// the status stream reflects the failure.
		a.snapshot.Merge(func(s *models.CanonicalStatus) {
			s.ErrorCode = fmt.Sprintf("%d", frame.ErrorData.ErrorCode)
		})
	}
}

func (a *Adapter) sendCommand(ctx context.Context, cmd int) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("%w: printer %s", errNotConnected, a.printer.ID)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	request := buildRequest(a.printer.Serial, cmd)

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to send command %d: %w", cmd, err)
	}

	return nil
}

// request is the command envelope the device expects.
type request struct {
	ID    string      `json:"Id"`
	Data  requestData `json:"Data"`
	Topic string      `json:"Topic"`
}

type requestData struct {
	Cmd         int                    `json:"Cmd"`
	Data        map[string]interface{} `json:"Data"`
	RequestID   string                 `json:"RequestID"`
	MainboardID string                 `json:"MainboardID"`
	TimeStamp   int64                  `json:"TimeStamp"`
	From        int                    `json:"From"`
}

func buildRequest(mainboardID string, cmd int) request {
	return request{
		ID:    uuid.New().String(),
		Topic: fmt.Sprintf("sdcp/request/%s", mainboardID),
		Data: requestData{
			Cmd:         cmd,
			Data:        map[string]interface{}{},
			RequestID:   uuid.New().String(),
			MainboardID: mainboardID,
			TimeStamp:   time.Now().Unix(),
		},
	}
}
