// Package sdcp pkg/protocol/sdcp/frame.go
package sdcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/HughKantsime/printfarm/pkg/models"
)

// Machine status values pushed in CurrentStatus.
const (
	machineIdle         = 0
	machinePrinting     = 1
	machineFileTransfer = 2
)

// Print task status values.
const (
	printIdle         = 0
	printHoming       = 1
	printDropping     = 2
	printExposuring   = 3
	printLifting      = 4
	printPausing      = 5
	printPaused       = 6
	printStopping     = 7
	printStopped      = 8
	printComplete     = 9
	printFileChecking = 10
)

// frame is the outer shape of every websocket message. Status frames and
// error notices arrive on different topics with different bodies.
type frame struct {
	Topic     string        `json:"Topic"`
	Status    *deviceStatus `json:"Status"`
	ErrorData *errorNotice  `json:"Data"`
}

type deviceStatus struct {
	CurrentStatus []int      `json:"CurrentStatus"`
	TempOfNozzle  float64    `json:"TempOfNozzle"`
	TempOfHotbed  float64    `json:"TempOfHotbed"`
	PrintInfo     *printInfo `json:"PrintInfo"`
}

type printInfo struct {
	Status       int    `json:"Status"`
	CurrentLayer int    `json:"CurrentLayer"`
	TotalLayer   int    `json:"TotalLayer"`
	CurrentTicks int64  `json:"CurrentTicks"`
	TotalTicks   int64  `json:"TotalTicks"`
	Filename     string `json:"Filename"`
	ErrorNumber  int    `json:"ErrorNumber"`
}

type errorNotice struct {
	ErrorCode int `json:"ErrorCode"`
}

func parseFrame(message []byte) (*frame, error) {
	var f frame

	if err := json.Unmarshal(message, &f); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}

	return &f, nil
}

// isErrorNotice keeps response frames, which also carry a Data object,
// from being mistaken for errors.
func isErrorNotice(f *frame) bool {
	return f.ErrorData != nil &&
		f.ErrorData.ErrorCode != 0 &&
		strings.HasPrefix(f.Topic, "sdcp/error/")
}

// frameToStatus converts one full status push into a canonical snapshot.
func frameToStatus(d *deviceStatus) models.CanonicalStatus {
	status := models.CanonicalStatus{
		State:      mapStatus(d),
		NozzleTemp: d.TempOfNozzle,
		BedTemp:    d.TempOfHotbed,
	}

	info := d.PrintInfo
	if info == nil {
		return status
	}

	status.CurrentLayer = info.CurrentLayer
	status.TotalLayers = info.TotalLayer
	status.FileName = info.Filename

	if info.TotalLayer > 0 {
		status.Progress = float64(info.CurrentLayer) / float64(info.TotalLayer) * 100
	}

	if info.Status == printComplete {
		status.Progress = 100
	}

	if info.TotalTicks > info.CurrentTicks {
		status.RemainingSec = int((info.TotalTicks - info.CurrentTicks) / 1000)
	}

	if info.ErrorNumber != 0 {
		status.ErrorCode = fmt.Sprintf("%d", info.ErrorNumber)
	}

	return status
}

func mapStatus(d *deviceStatus) models.PrinterState {
	if d.PrintInfo != nil {
		switch d.PrintInfo.Status {
		case printHoming, printDropping, printExposuring, printLifting, printFileChecking:
			return models.StatePrinting
		case printPausing, printPaused:
			return models.StatePaused
		case printComplete, printStopped, printIdle:
			return models.StateIdle
		case printStopping:
			return models.StatePrinting
		}
	}

	for _, s := range d.CurrentStatus {
		if s == machinePrinting {
			return models.StatePrinting
		}
	}

	if len(d.CurrentStatus) == 0 && d.PrintInfo == nil {
		return models.StateUnknown
	}

	return models.StateIdle
}
