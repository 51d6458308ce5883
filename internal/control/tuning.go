package control

import (
	"errors"
	"fmt"
)

// Tuning holds the controller constants. The zero value is not usable; start from
// DefaultTuning.
type Tuning struct {
	CruiseVelocity   float64 `json:"cruise_velocity"`    // Target speed on a straight
	SafeSpeed        float64 `json:"safe_speed"`         // Below this no curvature penalty applies
	CurrentGain      float64 `json:"current_gain"`       // Near-term curvature penalty
	BrakeGain        float64 `json:"brake_gain"`         // Upcoming curvature penalty
	ThrottleGain     float64 `json:"throttle_gain"`      // Speed error to throttle
	LookaheadGain    float64 `json:"lookahead_gain"`     // Points of lookahead per unit of speed
	SteerAheadGain   float64 `json:"steer_ahead_gain"`   // Steering target offset per unit of excess speed
	NoiseThreshold   float64 `json:"noise_threshold"`    // Turns at or below this are ignored in the lookahead
	NearWindow       int     `json:"near_window"`        // Points averaged for the near-term curvature
	HistoryLength    int     `json:"history_length"`     // Trailing positions kept for overlays
	SteerDegreesFull float64 `json:"steer_degrees_full"` // Bearing (degrees) that saturates the steering
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{
		CruiseVelocity:   420,
		SafeSpeed:        150,
		CurrentGain:      800,
		BrakeGain:        250,
		ThrottleGain:     0.12,
		LookaheadGain:    0.13,
		SteerAheadGain:   0.06,
		NoiseThreshold:   0.01,
		NearWindow:       5,
		HistoryLength:    100,
		SteerDegreesFull: 1,
	}
}

// Validate reports every invalid field at once.
func (t Tuning) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    float64
	}{
		{"cruise_velocity", t.CruiseVelocity},
		{"throttle_gain", t.ThrottleGain},
		{"lookahead_gain", t.LookaheadGain},
		{"steer_degrees_full", t.SteerDegreesFull},
	}
	for _, f := range positive {
		if f.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", f.name, f.v))
		}
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"safe_speed", t.SafeSpeed},
		{"current_gain", t.CurrentGain},
		{"brake_gain", t.BrakeGain},
		{"steer_ahead_gain", t.SteerAheadGain},
		{"noise_threshold", t.NoiseThreshold},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative, got %v", f.name, f.v))
		}
	}
	if t.NearWindow < 1 {
		errs = append(errs, fmt.Errorf("near_window must be at least 1, got %d", t.NearWindow))
	}
	if t.HistoryLength < 1 {
		errs = append(errs, fmt.Errorf("history_length must be at least 1, got %d", t.HistoryLength))
	}
	return errors.Join(errs...)
}
