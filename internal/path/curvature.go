package path

import (
	"math"

	"racing-line-follower/internal/common"
)

// Segment is the outgoing edge of a dense point.
type Segment struct {
	Angle  float64 // Bearing of the edge, atan2
	Length float64
}

// Angles computes the outgoing segment of every point of a closed path and the turn
// angle at each point relative to the previous segment.
func Angles(points []common.Vec2) ([]Segment, []float64) {
	n := len(points)
	segments := make([]Segment, n)
	for i, p := range points {
		d := points[common.Wrap(i+1, n)].Sub(p)
		segments[i] = Segment{Angle: d.Angle(), Length: d.Len()}
	}

	relative := make([]float64, n)
	for i := range segments {
		relative[i] = NormalizeTurn(segments[common.Wrap(i-1, n)].Angle - segments[i].Angle)
	}
	return segments, relative
}

// NormalizeTurn applies a single 2*Pi correction in each direction. Inputs within
// (-3*Pi, 3*Pi) land in (-Pi, Pi]; anything further out is only partially reduced.
func NormalizeTurn(a float64) float64 {
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
