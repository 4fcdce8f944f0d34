// Package octo pkg/protocol/octo/octo.go
//
// Pull adapter for OctoPrint-compatible HTTP devices. Each poll cycle
// tries the combined status endpoint first and falls back to the two
// legacy calls (printer info + job info) on older firmware. The device's
// own time-remaining figure is passed through untouched.
package octo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/HughKantsime/printfarm/pkg/models"
	"github.com/HughKantsime/printfarm/pkg/protocol"
)

const (
	defaultPort    = 80
	pollInterval   = 10 * time.Second
	requestTimeout = 8 * time.Second

	combinedPath = "/api/v1/status"
	printerPath  = "/api/printer"
	jobPath      = "/api/job"

	apiKeyHeader = "X-Api-Key"
)

var (
	errNotConnected = errors.New("not connected")
	errHTTPStatus   = errors.New("unexpected http status")
)

// Adapter implements protocol.Adapter for one HTTP-polled printer.
type Adapter struct {
	printer  models.Printer
	snapshot *protocol.Snapshot
	client   *http.Client
	baseURL  string

	mu          sync.Mutex
	done        chan struct{}
	healthy     bool
	useCombined bool
}

// NewAdapter builds an unconnected adapter.
func NewAdapter(printer models.Printer) (*Adapter, error) {
	port := printer.Port
	if port == 0 {
		port = defaultPort
	}

	return &Adapter{
		printer:  printer,
		snapshot: protocol.NewSnapshot(),
		client:   &http.Client{Timeout: requestTimeout},
		baseURL:  fmt.Sprintf("http://%s:%d", printer.Host, port),

		useCombined: true,
	}, nil
}

// Connect probes the device once, then starts the poll loop. The initial
// probe makes connect failures visible to the supervisor immediately
// instead of one poll interval later.
func (a *Adapter) Connect(ctx context.Context) error {
	if err := a.pollOnce(ctx); err != nil {
		a.snapshot.MarkOffline(fmt.Sprintf("connect failed: %v", err))

		return fmt.Errorf("failed to reach %s: %w", a.baseURL, err)
	}

	done := make(chan struct{})

	a.mu.Lock()
	a.done = done
	a.healthy = true
	a.mu.Unlock()

	go a.poll(done)

	return nil
}

// Disconnect stops the poll loop. Idempotent.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	done := a.done
	a.done = nil
	a.healthy = false
	a.mu.Unlock()

	if done != nil {
		close(done)
	}
}

// Status returns the last polled snapshot.
func (a *Adapter) Status() models.CanonicalStatus {
	return a.snapshot.Get()
}

// LastIngest reports when the last poll parsed successfully.
func (a *Adapter) LastIngest() time.Time {
	return a.snapshot.LastIngest()
}

// Connected reports whether the poll loop is running and its last cycle
// succeeded.
func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.done != nil && a.healthy
}

// Pause asks the device to pause the running print.
func (a *Adapter) Pause(ctx context.Context) error {
	return a.postJSON(ctx, jobPath, `{"command":"pause","action":"pause"}`)
}

// Resume continues a paused print.
func (a *Adapter) Resume(ctx context.Context) error {
	return a.postJSON(ctx, jobPath, `{"command":"pause","action":"resume"}`)
}

// Cancel stops the running print.
func (a *Adapter) Cancel(ctx context.Context) error {
	return a.postJSON(ctx, jobPath, `{"command":"cancel"}`)
}

// SetTemperature targets the named tool or the bed.
func (a *Adapter) SetTemperature(ctx context.Context, tool string, celsius float64) error {
	if tool == "bed" {
		return a.postJSON(ctx, "/api/printer/bed",
			fmt.Sprintf(`{"command":"target","target":%.1f}`, celsius))
	}

	return a.postJSON(ctx, "/api/printer/tool",
		fmt.Sprintf(`{"command":"target","targets":{"tool0":%.1f}}`, celsius))
}

func (a *Adapter) poll(done chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)

			err := a.pollOnce(ctx)

			cancel()

			a.mu.Lock()
			a.healthy = err == nil
			a.mu.Unlock()

			if err != nil {
				log.Printf("Octo %s: poll failed: %v", a.printer.ID, err)
				a.snapshot.MarkOffline(fmt.Sprintf("poll failed: %v", err))
			}
		}
	}
}

// pollOnce fetches one full status view and replaces the snapshot.
func (a *Adapter) pollOnce(ctx context.Context) error {
	a.mu.Lock()
	tryCombined := a.useCombined
	a.mu.Unlock()

	if tryCombined {
		status, err := a.fetchCombined(ctx)
		if err == nil {
			a.snapshot.Replace(status)
			return nil
		}

		if !errors.Is(err, errCombinedUnsupported) {
			return err
		}

		// Older firmware. Remember so every later cycle goes straight to
		// the legacy pair.
		a.mu.Lock()
		a.useCombined = false
		a.mu.Unlock()
	}

	status, err := a.fetchLegacy(ctx)
	if err != nil {
		return err
	}

	a.snapshot.Replace(status)

	return nil
}

func (a *Adapter) getJSON(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}

	if a.printer.APIKey != "" {
		req.Header.Set(apiKeyHeader, a.printer.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer closeBody(resp.Body)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return payload, resp.StatusCode, nil
}

func (a *Adapter) postJSON(ctx context.Context, path, body string) error {
	a.mu.Lock()
	running := a.done != nil
	a.mu.Unlock()

	if !running {
		return fmt.Errorf("%w: printer %s", errNotConnected, a.printer.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path,
		bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if a.printer.APIKey != "" {
		req.Header.Set(apiKeyHeader, a.printer.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post %s: %w", path, err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s %d", errHTTPStatus, path, resp.StatusCode)
	}

	return nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		log.Printf("Error closing response body: %v", err)
	}
}
