package track

import (
	"errors"
	"fmt"
	"math"

	"racing-line-follower/internal/common"
)

// ErrTooFewPoints is returned when a track has no usable polyline.
var ErrTooFewPoints = errors.New("track: polyline has no points")

// Track is the closed raw polyline handed to the bot at start-up.
// The last point implicitly connects back to the first.
type Track struct {
	Name  string
	Lines []common.Vec2
	// Width is the clearance radius around the centerline (half the drivable width).
	Width float64
}

// New copies lines into a Track.
func New(name string, lines []common.Vec2, width float64) *Track {
	pts := make([]common.Vec2, len(lines))
	copy(pts, lines)
	return &Track{Name: name, Lines: pts, Width: width}
}

// Validate reports whether the track can drive a controller. Fewer than three points is
// allowed (the path degenerates to the raw points) but zero is not.
func (t *Track) Validate() error {
	if t == nil || len(t.Lines) == 0 {
		return ErrTooFewPoints
	}
	if t.Width < 0 || math.IsNaN(t.Width) {
		return fmt.Errorf("track %q: width must be non-negative, got %v", t.Name, t.Width)
	}
	for i, p := range t.Lines {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("track %q: point %d is not finite", t.Name, i)
		}
	}
	return nil
}

// Segment returns the edge leaving vertex i (wrapping at the end).
func (t *Track) Segment(i int) (common.Vec2, common.Vec2) {
	n := len(t.Lines)
	return t.Lines[common.Wrap(i, n)], t.Lines[common.Wrap(i+1, n)]
}

// Length returns the closed perimeter of the polyline.
func (t *Track) Length() float64 {
	total := 0.0
	for i := range t.Lines {
		a, b := t.Segment(i)
		total += a.Dist(b)
	}
	return total
}

// Bounds returns the axis-aligned bounding box of the polyline.
func (t *Track) Bounds() (min, max common.Vec2) {
	if len(t.Lines) == 0 {
		return
	}
	min, max = t.Lines[0], t.Lines[0]
	for _, p := range t.Lines[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// DistanceToCenterline returns the distance from p to the closest edge of the polyline.
func (t *Track) DistanceToCenterline(p common.Vec2) float64 {
	best := math.MaxFloat64
	for i := range t.Lines {
		a, b := t.Segment(i)
		ab := b.Sub(a)
		l2 := ab.X*ab.X + ab.Y*ab.Y
		closest := a
		if l2 > 0 {
			s := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
			closest = a.Add(ab.Scale(common.Clamp(s, 0, 1)))
		}
		best = math.Min(best, p.Dist(closest))
	}
	return best
}
