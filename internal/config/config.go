// Package config provides configuration types and defaults for pkgops.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkgops/pkgops/internal/log"
	"github.com/pkgops/pkgops/internal/paths"
)

// Config holds all configuration options for pkgops.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Operations OperationsConfig `mapstructure:"operations"`
	Icons      IconsConfig      `mapstructure:"icons"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Flags      map[string]bool  `mapstructure:"flags"`
}

// LogConfig holds diagnostic logging configuration.
type LogConfig struct {
	// Enabled controls whether the diagnostic log file is written.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Path is the log file location.
	// Default: ~/.config/pkgops/pkgops.log
	Path string `mapstructure:"path"`

	// Level is the minimum severity written to the file.
	// Valid values: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
}

// OperationsConfig holds settings for the operation run loop.
type OperationsConfig struct {
	// MaxAutoRetries caps task-body invocations per run when the body keeps
	// asking for an immediate retry. 0 means no cap.
	MaxAutoRetries uint `mapstructure:"max_auto_retries"`

	// EventBuffer is the per-subscriber channel capacity on operation
	// event streams. 0 uses the broker default.
	EventBuffer int `mapstructure:"event_buffer"`
}

// IconsConfig holds icon resolution cache settings.
type IconsConfig struct {
	// TTL is how long a resolved icon stays cached.
	// Default: 1h
	TTL time.Duration `mapstructure:"ttl"`

	// Disabled turns off icon memoization entirely.
	Disabled bool `mapstructure:"disabled"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	// Default: ~/.config/pkgops/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultLogPath returns the default location of the diagnostic log file,
// or empty string if the home dir is unavailable.
func DefaultLogPath() string {
	return paths.LogFile()
}

// DefaultTracesFilePath returns the default path for trace file export,
// or empty string if the home dir is unavailable.
func DefaultTracesFilePath() string {
	return paths.TracesFile()
}

// ValidateLog checks logging configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateLog(lc LogConfig) error {
	if lc.Level != "" {
		switch lc.Level {
		case "debug", "info", "warn", "error":
			// Valid
		default:
			return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", lc.Level)
		}
	}
	return nil
}

// ValidateIcons checks icon cache configuration for errors.
func ValidateIcons(ic IconsConfig) error {
	if ic.TTL < 0 {
		return fmt.Errorf("icons.ttl must not be negative, got %v", ic.TTL)
	}
	return nil
}

// ValidateOperations checks run-loop configuration for errors.
func ValidateOperations(oc OperationsConfig) error {
	if oc.EventBuffer < 0 {
		return fmt.Errorf("operations.event_buffer must not be negative, got %d", oc.EventBuffer)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Validate checks the whole configuration.
func Validate(c Config) error {
	if err := ValidateLog(c.Log); err != nil {
		return err
	}
	if err := ValidateOperations(c.Operations); err != nil {
		return err
	}
	if err := ValidateIcons(c.Icons); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Enabled: false,
			Path:    DefaultLogPath(),
			Level:   "info",
		},
		Operations: OperationsConfig{
			MaxAutoRetries: 0,
			EventBuffer:    0,
		},
		Icons: IconsConfig{
			TTL:      time.Hour,
			Disabled: false,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# pkgops Configuration

# Diagnostic logging
log:
  enabled: false          # Write a diagnostic log file
  # path: ~/.config/pkgops/pkgops.log
  level: info             # debug, info, warn, error

# Operation run loop settings
operations:
  # Cap on task-body invocations per run when the body keeps asking for an
  # immediate retry. 0 = retry until a different outcome (default).
  max_auto_retries: 0

  # Per-subscriber buffer on operation event streams. 0 = default.
  event_buffer: 0

# Icon resolution cache
icons:
  ttl: 1h                 # How long a resolved icon stays cached
  disabled: false         # Turn off memoization entirely

# Feature flags for staged rollout
# flags:
#   queue-skip: true         # Allow queued operations to jump the line
#   icon-cache-bypass: false # Disable icon memoization

# Distributed tracing
# Enables per-attempt visibility into operation runs
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/pkgops/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
#
# Example: send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
