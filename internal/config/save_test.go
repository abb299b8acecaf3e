package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveOperations_CreatesNewFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".pkgops.yaml")

	err := SaveOperations(configPath, OperationsConfig{MaxAutoRetries: 3, EventBuffer: 32})
	require.NoError(t, err)

	_, err = os.Stat(configPath)
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_auto_retries: 3")
	assert.Contains(t, string(data), "event_buffer: 32")
}

func TestSaveOperations_PreservesOtherConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".pkgops.yaml")

	initial := `# My config with a comment
log:
  enabled: true
  level: debug

operations:
  max_auto_retries: 1

icons:
  ttl: 2h
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o600))

	err := SaveOperations(configPath, OperationsConfig{MaxAutoRetries: 5})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)

	// The top-of-file comment and untouched sections survive.
	assert.Contains(t, content, "# My config with a comment")
	assert.Contains(t, content, "enabled: true")
	assert.Contains(t, content, "ttl: 2h")
	assert.Contains(t, content, "max_auto_retries: 5")
	assert.NotContains(t, content, "max_auto_retries: 1")
}

func TestSaveOperations_RoundTripsThroughViper(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".pkgops.yaml")

	err := SaveOperations(configPath, OperationsConfig{MaxAutoRetries: 7, EventBuffer: 16})
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, uint(7), cfg.Operations.MaxAutoRetries)
	assert.Equal(t, 16, cfg.Operations.EventBuffer)
}

func TestSaveTracing_AppendsSection(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".pkgops.yaml")

	initial := "log:\n  level: warn\n"
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o600))

	err := SaveTracing(configPath, TracingConfig{
		Enabled:      true,
		Exporter:     "otlp",
		OTLPEndpoint: "jaeger.internal:4317",
		SampleRate:   0.25,
	})
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "otlp", cfg.Tracing.Exporter)
	assert.Equal(t, "jaeger.internal:4317", cfg.Tracing.OTLPEndpoint)
	assert.InDelta(t, 0.25, cfg.Tracing.SampleRate, 0.0001)
}

func TestSaveTracing_NoLeftoverTempFiles(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".pkgops.yaml")

	require.NoError(t, SaveTracing(configPath, TracingConfig{Exporter: "none"}))

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ".pkgops.yaml", entries[0].Name())
}
