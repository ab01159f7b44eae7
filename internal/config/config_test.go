package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 10.0, th.SkewRatio)
	assert.Equal(t, 5.0, th.ShuffleRatio)
	assert.Equal(t, int64(100*1024*1024), th.MinSpillBytes)
	assert.Equal(t, 1000, th.HighTaskCount)
	assert.Equal(t, 100.0, th.MinAvgTaskDurationMs)
	assert.NoError(t, th.Validate())
}

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"skew ratio at 1.0", func(th *Thresholds) { th.SkewRatio = 1.0 }},
		{"negative shuffle ratio", func(th *Thresholds) { th.ShuffleRatio = -1 }},
		{"negative spill bytes", func(th *Thresholds) { th.MinSpillBytes = -1 }},
		{"zero high task count", func(th *Thresholds) { th.HighTaskCount = 0 }},
		{"zero avg duration", func(th *Thresholds) { th.MinAvgTaskDurationMs = 0 }},
		{"io ratio above 1", func(th *Thresholds) { th.IORatio = 1.5 }},
		{"zero driver ratio", func(th *Thresholds) { th.DriverRatio = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			assert.Error(t, th.Validate())
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.SchemaVersion = "v2"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Explain.Provider = "openai"
	assert.Error(t, cfg.Validate())

	cfg.Explain.Provider = "ollama"
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sparkmap.yaml")
	content := `schema_version: v1
thresholds:
  skew_ratio: 5.0
  min_spill_bytes: 52428800
explain:
  provider: ollama
  model: llama3.1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, 5.0, cfg.Thresholds.SkewRatio)
	assert.Equal(t, int64(52428800), cfg.Thresholds.MinSpillBytes)
	assert.Equal(t, "ollama", cfg.Explain.Provider)
	assert.Equal(t, "llama3.1", cfg.Explain.Model)

	// Unset values keep defaults
	assert.Equal(t, DefaultShuffleRatio, cfg.Thresholds.ShuffleRatio)
	assert.Equal(t, DefaultHighTaskCount, cfg.Thresholds.HighTaskCount)
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad schema version", func(t *testing.T) {
		path := filepath.Join(dir, "bad-version.yaml")
		require.NoError(t, os.WriteFile(path, []byte("schema_version: v9\n"), 0o600))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("out of range threshold", func(t *testing.T) {
		path := filepath.Join(dir, "bad-threshold.yaml")
		content := "schema_version: v1\nthresholds:\n  io_ratio: 2.5\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}
