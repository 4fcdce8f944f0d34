package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "printfarm.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	return path
}

func TestLoadAndValidateDaemonConfig(t *testing.T) {
	path := writeConfig(t, `{
		"listen_addr": ":9000",
		"db_path": "/var/lib/printfarm/printfarm.db",
		"health_interval": "45s",
		"status_interval": "10s",
		"stop_codes": ["0500", "C11"],
		"alerting": {
			"quiet_start": "22:00",
			"quiet_end": "07:00",
			"dedup_window": "5m"
		}
	}`)

	var cfg DaemonConfig

	require.NoError(t, LoadAndValidate(path, &cfg))

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 45*time.Second, cfg.HealthInterval.Std())
	assert.Equal(t, []string{"0500", "C11"}, cfg.StopCodes)
	require.NotNil(t, cfg.Alerting)
	assert.Equal(t, 5*time.Minute, cfg.Alerting.DedupWindow.Std())
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := DaemonConfig{DBPath: "printfarm.db"}

	require.NoError(t, cfg.Validate())

	assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, defaultGrpcAddr, cfg.GrpcAddr)
	assert.Equal(t, defaultHistoryDepth, cfg.HistoryDepth)
	assert.Equal(t, defaultRetention, cfg.Retention.Std())
}

func TestValidateRequiresDBPath(t *testing.T) {
	var cfg DaemonConfig

	assert.ErrorIs(t, cfg.Validate(), errDBPathRequired)
}

func TestValidateRejectsLoneQuietBound(t *testing.T) {
	path := writeConfig(t, `{
		"db_path": "printfarm.db",
		"alerting": {"quiet_start": "22:00"}
	}`)

	var cfg DaemonConfig

	assert.Error(t, LoadAndValidate(path, &cfg))
}

func TestLoadFileErrors(t *testing.T) {
	var cfg DaemonConfig

	assert.Error(t, LoadFile(filepath.Join(t.TempDir(), "missing.json"), &cfg),
		"unreadable file")

	path := writeConfig(t, `{"db_path": 12`)
	assert.Error(t, LoadFile(path, &cfg), "truncated JSON")
}
