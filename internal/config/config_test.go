package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config file present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "CVEGEO", cfg.Zones.IDField)
	assert.Equal(t, 0.01, cfg.Zones.MinAreaKm2)
	assert.Equal(t, 8000.0, cfg.Thresholds.DensityPerKm2)
	assert.Equal(t, 800.0, cfg.Thresholds.DistanceM)
	assert.Equal(t, 64, cfg.Engine.BruteForceCutoff)
	assert.Equal(t, "transitgap.db", cfg.Store.Path)
	assert.Equal(t, 10, cfg.Output.TopN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Contains(t, cfg.CRS.Target, "+proj=tmerc")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRANSITGAP_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{name: "json info", cfg: LogConfig{Level: "info", Format: "json"}},
		{name: "console debug", cfg: LogConfig{Level: "debug", Format: "console"}},
		{name: "bad level", cfg: LogConfig{Level: "shout", Format: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
