package config

import "fmt"

// Default detection thresholds. All of them can be overridden via the
// config file or CLI flags; no detector hard-codes a threshold.
const (
	DefaultSkewRatio            = 10.0
	DefaultShuffleRatio         = 5.0
	DefaultMinSpillBytes        = 100 * 1024 * 1024 // 100 MB
	DefaultHighTaskCount        = 1000
	DefaultMinAvgTaskDurationMs = 100.0
	DefaultIORatio              = 0.7
	DefaultDriverRatio          = 0.5
)

// Thresholds holds the named detection thresholds consumed by the
// detector pipeline. Passed explicitly at construction time; there is
// no ambient/global threshold state.
type Thresholds struct {
	// SkewRatio flags a stage when max/median task duration exceeds it
	SkewRatio float64 `yaml:"skew_ratio"`

	// ShuffleRatio flags a stage when shuffle-write/input bytes exceeds it
	ShuffleRatio float64 `yaml:"shuffle_ratio"`

	// MinSpillBytes flags a stage spilling at least this much to disk (inclusive)
	MinSpillBytes int64 `yaml:"min_spill_bytes"`

	// HighTaskCount is the absolute task count above which a stage is
	// checked for partition inefficiency
	HighTaskCount int `yaml:"high_task_count"`

	// MinAvgTaskDurationMs flags high-task-count stages whose average
	// task duration falls below it
	MinAvgTaskDurationMs float64 `yaml:"min_avg_task_duration_ms"`

	// IORatio flags a stage when read time dominates stage duration
	IORatio float64 `yaml:"io_ratio"`

	// DriverRatio flags a stage when result serialization or scheduler
	// delay dominates stage duration
	DriverRatio float64 `yaml:"driver_ratio"`
}

// DefaultThresholds returns the documented default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SkewRatio:            DefaultSkewRatio,
		ShuffleRatio:         DefaultShuffleRatio,
		MinSpillBytes:        DefaultMinSpillBytes,
		HighTaskCount:        DefaultHighTaskCount,
		MinAvgTaskDurationMs: DefaultMinAvgTaskDurationMs,
		IORatio:              DefaultIORatio,
		DriverRatio:          DefaultDriverRatio,
	}
}

// Validate checks that the thresholds are usable
func (t *Thresholds) Validate() error {
	if t.SkewRatio <= 1.0 {
		return NewConfigError("skew_ratio must be greater than 1.0")
	}
	if t.ShuffleRatio <= 0 {
		return NewConfigError("shuffle_ratio must be positive")
	}
	if t.MinSpillBytes < 0 {
		return NewConfigError("min_spill_bytes must be non-negative")
	}
	if t.HighTaskCount < 1 {
		return NewConfigError("high_task_count must be at least 1")
	}
	if t.MinAvgTaskDurationMs <= 0 {
		return NewConfigError("min_avg_task_duration_ms must be positive")
	}
	if t.IORatio <= 0 || t.IORatio > 1.0 {
		return NewConfigError("io_ratio must be in (0, 1]")
	}
	if t.DriverRatio <= 0 || t.DriverRatio > 1.0 {
		return NewConfigError("driver_ratio must be in (0, 1]")
	}
	return nil
}

// ExplainConfig selects the optional explanation provider. Selection is
// always explicit; the engine never probes the environment to pick one.
type ExplainConfig struct {
	// Provider is one of "anthropic", "ollama", "gemini", or "" (disabled)
	Provider string `yaml:"provider"`

	// Model is the provider-specific model name; empty uses the provider default
	Model string `yaml:"model"`

	// Host overrides the endpoint for local providers (ollama)
	Host string `yaml:"host"`
}

// Validate checks the explain configuration
func (e *ExplainConfig) Validate() error {
	switch e.Provider {
	case "", "anthropic", "ollama", "gemini":
		return nil
	default:
		return NewConfigError("explain provider must be one of: anthropic, ollama, gemini")
	}
}

// Config holds all configuration for an analysis run
type Config struct {
	// SchemaVersion is the explicit config schema version (e.g., "v1")
	SchemaVersion string `yaml:"schema_version"`

	// Thresholds are the detection thresholds
	Thresholds Thresholds `yaml:"thresholds"`

	// Explain selects the optional explanation provider
	Explain ExplainConfig `yaml:"explain"`
}

// DefaultConfig returns a config with default thresholds and no explain provider.
func DefaultConfig() *Config {
	return &Config{
		SchemaVersion: "v1",
		Thresholds:    DefaultThresholds(),
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.SchemaVersion != "v1" {
		return NewConfigError("unsupported schema_version: %q (expected \"v1\")", c.SchemaVersion)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	return c.Explain.Validate()
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{message: fmt.Sprintf(format, args...)}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
