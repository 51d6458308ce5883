// Package config loads the run configuration shared by the binaries.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"racing-line-follower/internal/control"
	"racing-line-follower/internal/logging"
	"racing-line-follower/internal/path"
	"racing-line-follower/internal/telemetry"
)

// Environment overrides, applied after the file is read.
const (
	EnvLogLevel      = "PATHFOLLOW_LOG_LEVEL"
	EnvTelemetryAddr = "PATHFOLLOW_TELEMETRY_ADDR"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config holds the run configuration. Every field is optional; the Get* methods
// supply the defaults for anything left unset.
type Config struct {
	Track            *string  `json:"track,omitempty"`
	Clearance        *float64 `json:"clearance,omitempty"` // Overrides the track width when positive
	SmoothWindow     *int     `json:"smooth_window,omitempty"`
	TelemetryEnabled *bool    `json:"telemetry_enabled,omitempty"`
	TelemetryAddr    *string  `json:"telemetry_addr,omitempty"`
	LogLevel         *string  `json:"log_level,omitempty"`
	TickRate         *int     `json:"tick_rate,omitempty"` // Simulation ticks per second

	CruiseVelocity   *float64 `json:"cruise_velocity,omitempty"`
	SafeSpeed        *float64 `json:"safe_speed,omitempty"`
	CurrentGain      *float64 `json:"current_gain,omitempty"`
	BrakeGain        *float64 `json:"brake_gain,omitempty"`
	ThrottleGain     *float64 `json:"throttle_gain,omitempty"`
	LookaheadGain    *float64 `json:"lookahead_gain,omitempty"`
	SteerAheadGain   *float64 `json:"steer_ahead_gain,omitempty"`
	NoiseThreshold   *float64 `json:"noise_threshold,omitempty"`
	NearWindow       *int     `json:"near_window,omitempty"`
	HistoryLength    *int     `json:"history_length,omitempty"`
	SteerDegreesFull *float64 `json:"steer_degrees_full,omitempty"`
}

func ptrString(v string) *string { return &v }

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a .json file of at most 1MB, applies the environment
// overrides and validates the result.
func Load(p string) (*Config, error) {
	cleanPath := filepath.Clean(p)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = ptrString(v)
	}
	if v, ok := os.LookupEnv(EnvTelemetryAddr); ok && v != "" {
		c.TelemetryAddr = ptrString(v)
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Clearance != nil && *c.Clearance < 0 {
		errs = append(errs, fmt.Errorf("clearance must be non-negative, got %v", *c.Clearance))
	}
	if c.SmoothWindow != nil && *c.SmoothWindow < 0 {
		errs = append(errs, fmt.Errorf("smooth_window must be non-negative, got %d", *c.SmoothWindow))
	}
	if c.TickRate != nil && *c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %d", *c.TickRate))
	}
	if c.TelemetryAddr != nil && *c.TelemetryAddr == "" {
		errs = append(errs, errors.New("telemetry_addr must not be empty"))
	}
	if _, err := logging.ParseLevel(c.GetLogLevel()); err != nil {
		errs = append(errs, err)
	}
	if err := c.Tuning().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GetTrack returns the track file path, empty if unset.
func (c *Config) GetTrack() string {
	if c.Track == nil {
		return ""
	}
	return *c.Track
}

// GetClearance returns the clearance override or 0 (use the track width).
func (c *Config) GetClearance() float64 {
	if c.Clearance == nil {
		return 0
	}
	return *c.Clearance
}

// GetSmoothWindow returns the smoothing window or the default.
func (c *Config) GetSmoothWindow() int {
	if c.SmoothWindow == nil {
		return path.DefaultSmoothWindow
	}
	return *c.SmoothWindow
}

// GetTelemetryEnabled reports whether the UDP sink should be used. Defaults to false.
func (c *Config) GetTelemetryEnabled() bool {
	return c.TelemetryEnabled != nil && *c.TelemetryEnabled
}

// GetTelemetryAddr returns the telemetry destination or the default.
func (c *Config) GetTelemetryAddr() string {
	if c.TelemetryAddr == nil {
		return telemetry.DefaultAddr
	}
	return *c.TelemetryAddr
}

// GetLogLevel returns the log level or the default.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == nil {
		return logging.DefaultLevel
	}
	return *c.LogLevel
}

// GetTickRate returns the simulation tick rate or 60.
func (c *Config) GetTickRate() int {
	if c.TickRate == nil {
		return 60
	}
	return *c.TickRate
}

// Tuning returns the controller constants with unset fields taken from
// control.DefaultTuning.
func (c *Config) Tuning() control.Tuning {
	t := control.DefaultTuning()
	setFloat(&t.CruiseVelocity, c.CruiseVelocity)
	setFloat(&t.SafeSpeed, c.SafeSpeed)
	setFloat(&t.CurrentGain, c.CurrentGain)
	setFloat(&t.BrakeGain, c.BrakeGain)
	setFloat(&t.ThrottleGain, c.ThrottleGain)
	setFloat(&t.LookaheadGain, c.LookaheadGain)
	setFloat(&t.SteerAheadGain, c.SteerAheadGain)
	setFloat(&t.NoiseThreshold, c.NoiseThreshold)
	setFloat(&t.SteerDegreesFull, c.SteerDegreesFull)
	if c.NearWindow != nil {
		t.NearWindow = *c.NearWindow
	}
	if c.HistoryLength != nil {
		t.HistoryLength = *c.HistoryLength
	}
	return t
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
