// Package bambu pkg/protocol/bambu/report.go
package bambu

import (
	"encoding/json"
	"fmt"

	"github.com/HughKantsime/printfarm/pkg/models"
)

// reportEnvelope is the outer shape of every broker message. Only print
// reports carry status; system and info messages are ignored.
type reportEnvelope struct {
	Print *printReport `json:"print"`
}

// printReport is a partial delta. Pointer fields distinguish "absent"
// from zero so merges never clobber known values.
type printReport struct {
	GcodeState      *string  `json:"gcode_state"`
	McPercent       *float64 `json:"mc_percent"`
	McRemainingTime *int     `json:"mc_remaining_time"`
	LayerNum        *int     `json:"layer_num"`
	TotalLayerNum   *int     `json:"total_layer_num"`
	NozzleTemper    *float64 `json:"nozzle_temper"`
	BedTemper       *float64 `json:"bed_temper"`
	SubtaskName     *string  `json:"subtask_name"`
	GcodeFile       *string  `json:"gcode_file"`
	PrintError      *int64   `json:"print_error"`
}

func parseReport(payload []byte) (*printReport, error) {
	var envelope reportEnvelope

	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("invalid report payload: %w", err)
	}

	return envelope.Print, nil
}

// applyReport merges one delta into the running snapshot.
func applyReport(s *models.CanonicalStatus, r *printReport) {
	if r.GcodeState != nil {
		s.State = mapState(*r.GcodeState)

		// A finished print reports 100 even when the percent field is
		// missing from the same delta.
		if *r.GcodeState == "FINISH" {
			s.Progress = 100
			s.RemainingSec = 0
		}
	}

	if r.McPercent != nil {
		s.Progress = *r.McPercent
	}

	if r.McRemainingTime != nil {
		s.RemainingSec = *r.McRemainingTime * 60
	}

	if r.LayerNum != nil {
		s.CurrentLayer = *r.LayerNum
	}

	if r.TotalLayerNum != nil {
		s.TotalLayers = *r.TotalLayerNum
	}

	if r.NozzleTemper != nil {
		s.NozzleTemp = *r.NozzleTemper
	}

	if r.BedTemper != nil {
		s.BedTemp = *r.BedTemper
	}

	if r.SubtaskName != nil && *r.SubtaskName != "" {
		s.FileName = *r.SubtaskName
	} else if r.GcodeFile != nil && *r.GcodeFile != "" {
		s.FileName = *r.GcodeFile
	}

	if r.PrintError != nil {
		if *r.PrintError == 0 {
			s.ErrorCode = ""
		} else {
			s.ErrorCode = fmt.Sprintf("%08X", *r.PrintError)
		}
	}
}

// mapState translates gcode_state values onto the canonical enum.
// Terminal device states normalize to IDLE or ERROR; the lifecycle
// detector reconstructs success from progress and error code.
func mapState(gcodeState string) models.PrinterState {
	switch gcodeState {
	case "IDLE", "FINISH":
		return models.StateIdle
	case "RUNNING", "PREPARE", "SLICING":
		return models.StatePrinting
	case "PAUSE":
		return models.StatePaused
	case "FAILED":
		return models.StateError
	default:
		return models.StateUnknown
	}
}
