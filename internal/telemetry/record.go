// Package telemetry carries the per-tick controller record to external plotting tools.
// Delivery is best effort: nothing in here may slow down or fail a control tick.
package telemetry

import "encoding/json"

// DefaultAddr is where the plotting tools listen for records.
const DefaultAddr = "127.0.0.1:5123"

// Record is the flat per-tick telemetry record. Y is sign-inverted relative to the
// controller's coordinates so plots come out y-up.
type Record struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	PathDis         float64 `json:"path_dis"`
	UpcomingAngle   float64 `json:"upcoming_angle"`
	FreeTrackSpeed  float64 `json:"free_track_speed"`
	BreakReduction  float64 `json:"break_reduction"`
	Throttle        float64 `json:"throttle"`
	Velocity        float64 `json:"velocity"`
	Steer           float64 `json:"steer"`
	TargetVelocity  float64 `json:"target_velocity"`
	MaxAngle        float64 `json:"max_angle"`
	BreakMultiplier float64 `json:"breakmultiplier"`
}

// Encode returns the datagram payload for r.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Decode parses a datagram payload.
func Decode(b []byte) (Record, error) {
	var r Record
	err := json.Unmarshal(b, &r)
	return r, err
}
