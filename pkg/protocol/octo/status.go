// Package octo pkg/protocol/octo/status.go
package octo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/HughKantsime/printfarm/pkg/models"
)

var errCombinedUnsupported = errors.New("combined status endpoint unsupported")

// combinedStatus is the one-call response newer firmware serves.
type combinedStatus struct {
	Printer struct {
		State      string  `json:"state"`
		TempNozzle float64 `json:"temp_nozzle"`
		TempBed    float64 `json:"temp_bed"`
		ErrorCode  string  `json:"error_code"`
	} `json:"printer"`
	Job struct {
		Progress      float64 `json:"progress"`
		TimeRemaining int     `json:"time_remaining"`
		File          struct {
			Name string `json:"name"`
		} `json:"file"`
	} `json:"job"`
}

// legacyPrinter is the /api/printer response.
type legacyPrinter struct {
	Temperature struct {
		Tool0 struct {
			Actual float64 `json:"actual"`
		} `json:"tool0"`
		Bed struct {
			Actual float64 `json:"actual"`
		} `json:"bed"`
	} `json:"temperature"`
	State struct {
		Text  string `json:"text"`
		Flags struct {
			Printing bool `json:"printing"`
			Pausing  bool `json:"pausing"`
			Paused   bool `json:"paused"`
			Error    bool `json:"error"`
			Ready    bool `json:"ready"`
		} `json:"flags"`
	} `json:"state"`
}

// legacyJob is the /api/job response.
type legacyJob struct {
	Job struct {
		File struct {
			Name string `json:"name"`
		} `json:"file"`
	} `json:"job"`
	Progress struct {
		Completion    *float64 `json:"completion"`
		PrintTimeLeft *int     `json:"printTimeLeft"`
	} `json:"progress"`
}

func (a *Adapter) fetchCombined(ctx context.Context) (models.CanonicalStatus, error) {
	payload, code, err := a.getJSON(ctx, combinedPath)
	if err != nil {
		return models.CanonicalStatus{}, err
	}

	switch code {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNotImplemented:
		return models.CanonicalStatus{}, fmt.Errorf("%w: http %d", errCombinedUnsupported, code)
	default:
		return models.CanonicalStatus{}, fmt.Errorf("%w: %s %d", errHTTPStatus, combinedPath, code)
	}

	var combined combinedStatus
	if err := json.Unmarshal(payload, &combined); err != nil {
		return models.CanonicalStatus{}, fmt.Errorf("invalid combined status: %w", err)
	}

	status := models.CanonicalStatus{
		State:        mapCombinedState(combined.Printer.State),
		Progress:     combined.Job.Progress,
		NozzleTemp:   combined.Printer.TempNozzle,
		BedTemp:      combined.Printer.TempBed,
		RemainingSec: combined.Job.TimeRemaining,
		FileName:     combined.Job.File.Name,
		ErrorCode:    combined.Printer.ErrorCode,
		Raw:          json.RawMessage(payload),
	}

	if status.State == models.StateIdle && combined.Printer.State == "FINISHED" {
		status.Progress = 100
	}

	return status, nil
}

func (a *Adapter) fetchLegacy(ctx context.Context) (models.CanonicalStatus, error) {
	printerPayload, code, err := a.getJSON(ctx, printerPath)
	if err != nil {
		return models.CanonicalStatus{}, err
	}

	if code != http.StatusOK {
		return models.CanonicalStatus{}, fmt.Errorf("%w: %s %d", errHTTPStatus, printerPath, code)
	}

	jobPayload, code, err := a.getJSON(ctx, jobPath)
	if err != nil {
		return models.CanonicalStatus{}, err
	}

	if code != http.StatusOK {
		return models.CanonicalStatus{}, fmt.Errorf("%w: %s %d", errHTTPStatus, jobPath, code)
	}

	var printerInfo legacyPrinter
	if err := json.Unmarshal(printerPayload, &printerInfo); err != nil {
		return models.CanonicalStatus{}, fmt.Errorf("invalid printer info: %w", err)
	}

	var jobInfo legacyJob
	if err := json.Unmarshal(jobPayload, &jobInfo); err != nil {
		return models.CanonicalStatus{}, fmt.Errorf("invalid job info: %w", err)
	}

	status := models.CanonicalStatus{
		State:      mapLegacyState(&printerInfo),
		NozzleTemp: printerInfo.Temperature.Tool0.Actual,
		BedTemp:    printerInfo.Temperature.Bed.Actual,
		FileName:   jobInfo.Job.File.Name,
		Raw:        json.RawMessage(printerPayload),
	}

	// The legacy progress fields go null between jobs.
	if jobInfo.Progress.Completion != nil {
		status.Progress = *jobInfo.Progress.Completion
	}

	if jobInfo.Progress.PrintTimeLeft != nil {
		status.RemainingSec = *jobInfo.Progress.PrintTimeLeft
	}

	return status, nil
}

// mapCombinedState translates the combined endpoint's state strings.
func mapCombinedState(state string) models.PrinterState {
	switch state {
	case "IDLE", "READY", "FINISHED", "STOPPED":
		return models.StateIdle
	case "PRINTING":
		return models.StatePrinting
	case "PAUSED":
		return models.StatePaused
	case "ERROR", "ATTENTION":
		return models.StateError
	default:
		return models.StateUnknown
	}
}

// mapLegacyState derives the state from the legacy flag set; the text
// field is localized on some installs and not trusted.
func mapLegacyState(info *legacyPrinter) models.PrinterState {
	flags := info.State.Flags

	switch {
	case flags.Error:
		return models.StateError
	case flags.Paused || flags.Pausing:
		return models.StatePaused
	case flags.Printing:
		return models.StatePrinting
	case flags.Ready:
		return models.StateIdle
	default:
		return models.StateUnknown
	}
}
