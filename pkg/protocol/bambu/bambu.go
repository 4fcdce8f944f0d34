// Package bambu pkg/protocol/bambu/bambu.go
//
// Push-delta adapter. The printer runs an MQTT broker; it publishes
// partial status reports to device/<serial>/report and accepts commands
// on device/<serial>/request. Reports are deltas, so fields merge into a
// running snapshot, and a healthy-looking connection with no reports is
// detected through LastIngest rather than the transport state.
package bambu

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/HughKantsime/printfarm/pkg/models"
	"github.com/HughKantsime/printfarm/pkg/protocol"
)

const (
	defaultPort     = 8883
	defaultUsername = "bblp"

	connectTimeout = 10 * time.Second
	commandTimeout = 5 * time.Second
	keepAlive      = 30 * time.Second

	reportTopicFmt  = "device/%s/report"
	requestTopicFmt = "device/%s/request"
)

var (
	errMissingSerial     = errors.New("bambu printer requires a serial")
	errMissingAccessCode = errors.New("bambu printer requires an access code")
	errNotConnected      = errors.New("not connected")
	errConnectTimeout    = errors.New("connect timed out")
	errCommandTimeout    = errors.New("command timed out")
)

// Adapter implements protocol.Adapter for one Bambu printer.
type Adapter struct {
	printer  models.Printer
	snapshot *protocol.Snapshot

	mu     sync.Mutex
	client mqtt.Client
	seq    int64
}

// NewAdapter validates the registry row and builds an unconnected adapter.
func NewAdapter(printer models.Printer) (*Adapter, error) {
	if printer.Serial == "" {
		return nil, fmt.Errorf("%w: printer %s", errMissingSerial, printer.ID)
	}

	if printer.AccessCode == "" {
		return nil, fmt.Errorf("%w: printer %s", errMissingAccessCode, printer.ID)
	}

	return &Adapter{
		printer:  printer,
		snapshot: protocol.NewSnapshot(),
	}, nil
}

// Connect dials the printer's broker, subscribes to the report topic and
// requests a full status push to prime the snapshot.
func (a *Adapter) Connect(ctx context.Context) error {
	port := a.printer.Port
	if port == 0 {
		port = defaultPort
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tls://%s:%d", a.printer.Host, port))
	opts.SetClientID(fmt.Sprintf("printfarm-%s-%d", a.printer.Serial, time.Now().UnixNano()))
	opts.SetUsername(defaultUsername)
	opts.SetPassword(a.printer.AccessCode)
	opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true}) // printers use self-signed certs
	opts.SetKeepAlive(keepAlive)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(false) // the supervisor owns reconnection

	opts.OnConnect = func(client mqtt.Client) {
		topic := fmt.Sprintf(reportTopicFmt, a.printer.Serial)
		if token := client.Subscribe(topic, 0, a.handleReport); token.Wait() && token.Error() != nil {
			log.Printf("Bambu %s: subscribe failed: %v", a.printer.ID, token.Error())
			return
		}

		if err := a.requestPushAll(client); err != nil {
			log.Printf("Bambu %s: pushall request failed: %v", a.printer.ID, err)
		}
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Printf("Bambu %s: connection lost: %v", a.printer.ID, err)
		a.snapshot.MarkOffline(fmt.Sprintf("connection lost: %v", err))
	}

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		client.Disconnect(0)
		a.snapshot.MarkOffline("connect timed out")

		return fmt.Errorf("%w: %s", errConnectTimeout, a.printer.Host)
	}

	if err := token.Error(); err != nil {
		client.Disconnect(0)
		a.snapshot.MarkOffline(fmt.Sprintf("connect failed: %v", err))

		return fmt.Errorf("failed to connect to %s: %w", a.printer.Host, err)
	}

	if err := ctx.Err(); err != nil {
		client.Disconnect(0)
		return err
	}

	a.mu.Lock()
	a.client = client
	a.mu.Unlock()

	return nil
}

// Disconnect tears the broker session down. Idempotent.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	client := a.client
	a.client = nil
	a.mu.Unlock()

	if client != nil && client.IsConnected() {
		client.Disconnect(250)
	}
}

// Status returns the merged snapshot.
func (a *Adapter) Status() models.CanonicalStatus {
	return a.snapshot.Get()
}

// LastIngest reports when the last report was parsed.
func (a *Adapter) LastIngest() time.Time {
	return a.snapshot.LastIngest()
}

// Connected reports the transport view only; a stalled broker session
// still answers true here.
func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.client != nil && a.client.IsConnected()
}

// Pause asks the device to pause the running print.
func (a *Adapter) Pause(ctx context.Context) error {
	return a.sendPrintCommand(ctx, "pause", "")
}

// Resume continues a paused print.
func (a *Adapter) Resume(ctx context.Context) error {
	return a.sendPrintCommand(ctx, "resume", "")
}

// Cancel stops the running print.
func (a *Adapter) Cancel(ctx context.Context) error {
	return a.sendPrintCommand(ctx, "stop", "")
}

// SetTemperature targets the nozzle or bed through a gcode line.
func (a *Adapter) SetTemperature(ctx context.Context, tool string, celsius float64) error {
	var line string

	switch tool {
	case "bed":
		line = fmt.Sprintf("M140 S%.0f\n", celsius)
	default:
		line = fmt.Sprintf("M104 S%.0f\n", celsius)
	}

	return a.sendPrintCommand(ctx, "gcode_line", line)
}

func (a *Adapter) handleReport(_ mqtt.Client, msg mqtt.Message) {
	report, err := parseReport(msg.Payload())
	if err != nil {
		log.Printf("Bambu %s: dropping malformed report: %v", a.printer.ID, err)
		return
	}

	if report == nil {
		// Not a print report (system/info chatter); nothing to merge.
		return
	}

	a.snapshot.Merge(func(s *models.CanonicalStatus) {
		applyReport(s, report)
		s.Raw = append(s.Raw[:0], msg.Payload()...)
	})
}

func (a *Adapter) requestPushAll(client mqtt.Client) error {
	payload := fmt.Sprintf(`{"pushing":{"command":"pushall","sequence_id":"%s"}}`, a.nextSeq())

	return a.publish(client, payload)
}

func (a *Adapter) sendPrintCommand(ctx context.Context, command, param string) error {
	a.mu.Lock()
	client := a.client
	a.mu.Unlock()

	if client == nil || !client.IsConnected() {
		return fmt.Errorf("%w: printer %s", errNotConnected, a.printer.ID)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	payload := fmt.Sprintf(`{"print":{"command":%q,"param":%q,"sequence_id":"%s"}}`,
		command, param, a.nextSeq())

	return a.publish(client, payload)
}

func (a *Adapter) publish(client mqtt.Client, payload string) error {
	topic := fmt.Sprintf(requestTopicFmt, a.printer.Serial)

	token := client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(commandTimeout) {
		return fmt.Errorf("%w: %s", errCommandTimeout, topic)
	}

	return token.Error()
}

func (a *Adapter) nextSeq() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++

	return strconv.FormatInt(a.seq, 10)
}
