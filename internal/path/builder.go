package path

import (
	"math"

	"racing-line-follower/internal/common"
)

const (
	// SampleSpacing is the nominal distance between dense samples.
	SampleSpacing = 10.0
	// MinSamplesPerSegment bounds short segments from below.
	MinSamplesPerSegment = 5
	// HandleRatio places the inner control points along each segment.
	HandleRatio = 0.3
)

// SamplesFor returns how many dense samples a raw segment of the given length yields.
func SamplesFor(length float64) int {
	return max(int(length/SampleSpacing), MinSamplesPerSegment)
}

// Upscale turns a closed raw polyline into a dense sampling of piecewise cubic Bezier
// segments whose tangents are continuous at every raw vertex.
//
// checkpoints[i] is true exactly when points[i] is a raw vertex (the t=0 sample of its
// segment). controls holds the control polygon of each segment. With fewer than three
// raw points the input is returned verbatim, every point flagged as a checkpoint.
func Upscale(raw []common.Vec2) (points []common.Vec2, checkpoints []bool, controls []common.CubicBez) {
	n := len(raw)
	if n < 3 {
		points = make([]common.Vec2, n)
		copy(points, raw)
		checkpoints = make([]bool, n)
		for i := range checkpoints {
			checkpoints[i] = true
		}
		return points, checkpoints, nil
	}

	controls = make([]common.CubicBez, 0, n)
	for i := range raw {
		prev := raw[common.Wrap(i-1, n)]
		curr := raw[i]
		next := raw[common.Wrap(i+1, n)]
		after := raw[common.Wrap(i+2, n)]

		before := curr.Sub(prev)
		current := next.Sub(curr)
		outgoing := after.Sub(next)
		angleBefore := before.Angle()
		angleCurrent := current.Angle()
		angleAfter := outgoing.Angle()

		angleIn := (angleBefore + angleCurrent) / 2
		angleOut := (angleCurrent + angleAfter) / 2
		// Averaging across the ±Pi seam points the tangent backwards; flip it.
		if math.Abs(angleBefore-angleCurrent) > math.Pi {
			angleIn += math.Pi
		}
		if math.Abs(angleCurrent-angleAfter) > math.Pi {
			angleOut += math.Pi
		}

		arm := current.Len() * HandleRatio
		seg := common.CubicBez{
			P0: curr,
			P1: curr.Add(common.FromAngle(angleIn).Scale(arm)),
			P2: next.Add(common.FromAngle(angleOut + math.Pi).Scale(arm)),
			P3: next,
		}
		controls = append(controls, seg)

		steps := SamplesFor(current.Len())
		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			points = append(points, seg.Eval(t))
			checkpoints = append(checkpoints, s == 0)
		}
	}
	return points, checkpoints, controls
}
