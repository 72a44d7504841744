package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse(`
[window]
width = 1024
tick_rate = "8ms"

[logging]
format = "json"
`)
	require.NoError(t, err)
	assert.EqualValues(t, 1024, cfg.Window.Width)
	assert.EqualValues(t, 600, cfg.Window.Height)
	assert.Equal(t, 8*time.Millisecond, cfg.Window.TickRate)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.EqualValues(t, 8, cfg.Effects.MaxConcurrent)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "[window"},
		{"zero width", "[window]\nwidth = 0"},
		{"no effects", "[effects]\nmax_concurrent = 0"},
		{"zero tick rate", "[window]\ntick_rate = \"0s\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.doc)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mado.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\nframes = 10\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Render.Frames)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
