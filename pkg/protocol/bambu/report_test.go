package bambu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HughKantsime/printfarm/pkg/models"
)

func TestParseReportIgnoresNonPrintMessages(t *testing.T) {
	report, err := parseReport([]byte(`{"system":{"command":"get_access_code"}}`))
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestParseReportRejectsMalformedPayload(t *testing.T) {
	_, err := parseReport([]byte(`{"print": not json`))
	assert.Error(t, err)
}

func TestApplyReportMergesDeltas(t *testing.T) {
	status := models.Offline()

	full, err := parseReport([]byte(`{"print":{
        "gcode_state":"RUNNING",
        "mc_percent":12,
        "mc_remaining_time":95,
        "layer_num":24,
        "total_layer_num":200,
        "nozzle_temper":219.5,
        "bed_temper":55.1,
        "subtask_name":"benchy.3mf",
        "print_error":0
    }}`))
	require.NoError(t, err)
	require.NotNil(t, full)

	applyReport(&status, full)

	assert.Equal(t, models.StatePrinting, status.State)
	assert.InDelta(t, 12.0, status.Progress, 0.001)
	assert.Equal(t, 95*60, status.RemainingSec)
	assert.Equal(t, 24, status.CurrentLayer)
	assert.Equal(t, 200, status.TotalLayers)
	assert.InDelta(t, 219.5, status.NozzleTemp, 0.001)
	assert.Equal(t, "benchy.3mf", status.FileName)
	assert.Empty(t, status.ErrorCode)

	// A later delta carrying only progress fields leaves the rest alone.
	delta, err := parseReport([]byte(`{"print":{"mc_percent":13,"layer_num":26}}`))
	require.NoError(t, err)

	applyReport(&status, delta)

	assert.Equal(t, models.StatePrinting, status.State)
	assert.InDelta(t, 13.0, status.Progress, 0.001)
	assert.Equal(t, 26, status.CurrentLayer)
	assert.Equal(t, "benchy.3mf", status.FileName)
	assert.Equal(t, 200, status.TotalLayers)
}

func TestApplyReportFinishNormalizesToIdle(t *testing.T) {
	status := models.CanonicalStatus{
		State:    models.StatePrinting,
		Progress: 98,
	}

	report, err := parseReport([]byte(`{"print":{"gcode_state":"FINISH"}}`))
	require.NoError(t, err)

	applyReport(&status, report)

	assert.Equal(t, models.StateIdle, status.State)
	assert.InDelta(t, 100.0, status.Progress, 0.001)
	assert.Zero(t, status.RemainingSec)
}

func TestApplyReportErrorCode(t *testing.T) {
	status := models.CanonicalStatus{State: models.StatePrinting}

	report, err := parseReport([]byte(`{"print":{"print_error":83902523}}`))
	require.NoError(t, err)

	applyReport(&status, report)

	// The state field is expected to lag behind the error code.
	assert.Equal(t, models.StatePrinting, status.State)
	assert.Equal(t, "0500403B", status.ErrorCode)
}

func TestMapState(t *testing.T) {
	tests := []struct {
		gcodeState string
		want       models.PrinterState
	}{
		{"IDLE", models.StateIdle},
		{"FINISH", models.StateIdle},
		{"RUNNING", models.StatePrinting},
		{"PREPARE", models.StatePrinting},
		{"PAUSE", models.StatePaused},
		{"FAILED", models.StateError},
		{"???", models.StateUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapState(tt.gcodeState), "gcode_state %s", tt.gcodeState)
	}
}

func TestNewAdapterValidation(t *testing.T) {
	_, err := NewAdapter(models.Printer{ID: "p1", Host: "10.0.0.2", AccessCode: "123"})
	assert.ErrorIs(t, err, errMissingSerial)

	_, err = NewAdapter(models.Printer{ID: "p1", Host: "10.0.0.2", Serial: "01S00C123"})
	assert.ErrorIs(t, err, errMissingAccessCode)

	adapter, err := NewAdapter(models.Printer{
		ID: "p1", Host: "10.0.0.2", Serial: "01S00C123", AccessCode: "123",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StateOffline, adapter.Status().State)
	assert.False(t, adapter.Connected())
}
