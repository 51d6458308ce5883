package path

import "racing-line-follower/internal/common"

// DefaultSmoothWindow is the smoothing window applied to the dense path.
const DefaultSmoothWindow = 10

// Smooth replaces each point with the midpoint of the samples window/2 before and after
// it on the closed path. Only those two samples contribute. Window 0 or 1 leaves the
// geometry unchanged.
func Smooth(points []common.Vec2, window int) []common.Vec2 {
	n := len(points)
	out := make([]common.Vec2, n)
	half := window / 2
	for i := range points {
		a := points[common.Wrap(i-half, n)]
		b := points[common.Wrap(i+half, n)]
		out[i] = a.Lerp(b, 0.5)
	}
	return out
}
