package path

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"racing-line-follower/internal/common"
)

func circle(n int, center common.Vec2, radius float64) []common.Vec2 {
	pts := make([]common.Vec2, n)
	for i := range pts {
		pts[i] = center.Add(common.FromAngle(2 * math.Pi * float64(i) / float64(n)).Scale(radius))
	}
	return pts
}

var polygons = map[string][]common.Vec2{
	"circle8": circle(8, common.V(0, 0), 500),
	"square":  {{0, 0}, {400, 0}, {400, 400}, {0, 400}},
	"kidney":  {{100, 100}, {700, 80}, {900, 300}, {600, 380}, {450, 600}, {120, 520}},
	"tiny":    {{0, 0}, {12, 0}, {6, 9}},
	"cw":      {{0, 0}, {0, 300}, {300, 300}, {300, 0}},
}

func TestUpscaleSampleCounts(t *testing.T) {
	for name, raw := range polygons {
		t.Run(name, func(t *testing.T) {
			points, checkpoints, controls := Upscale(raw)

			want := 0
			for i := range raw {
				want += SamplesFor(raw[(i+1)%len(raw)].Dist(raw[i]))
			}
			require.Len(t, points, want)
			require.Len(t, checkpoints, want)
			require.Len(t, controls, len(raw))

			count, vertex := 0, 0
			for i, c := range checkpoints {
				if !c {
					continue
				}
				assert.Equal(t, raw[vertex], points[i], "checkpoint %d should sit on raw vertex %d", i, vertex)
				count++
				vertex++
			}
			assert.Equal(t, len(raw), count)
			assert.True(t, checkpoints[0])
		})
	}
}

func TestUpscaleTangentsPointForward(t *testing.T) {
	for name, raw := range polygons {
		t.Run(name, func(t *testing.T) {
			_, _, controls := Upscale(raw)
			for i, c := range controls {
				chord := c.P3.Sub(c.P0)
				out := c.P1.Sub(c.P0)
				in := c.P3.Sub(c.P2)
				assert.Greater(t, out.X*chord.X+out.Y*chord.Y, 0.0, "segment %d leaves backwards", i)
				assert.Greater(t, in.X*chord.X+in.Y*chord.Y, 0.0, "segment %d arrives backwards", i)
				assert.InDelta(t, chord.Len()*HandleRatio, out.Len(), 1e-9)
			}
		})
	}
}

func TestUpscaleDegenerate(t *testing.T) {
	raw := []common.Vec2{{1, 2}, {3, 4}}
	points, checkpoints, controls := Upscale(raw)
	assert.Equal(t, raw, points)
	assert.Equal(t, []bool{true, true}, checkpoints)
	assert.Empty(t, controls)

	p, err := New(raw, DefaultSmoothWindow)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
	assert.Len(t, p.Relative, 2)

	_, err = New(nil, DefaultSmoothWindow)
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestSmoothIdentityWindows(t *testing.T) {
	points, _, _ := Upscale(polygons["kidney"])
	approx := cmpopts.EquateApprox(0, 1e-9)
	for _, w := range []int{0, 1} {
		got := Smooth(points, w)
		if diff := cmp.Diff(points, got, approx); diff != "" {
			t.Fatalf("Smooth(window=%d) changed geometry (-want +got):\n%s", w, diff)
		}
	}
}

func TestSmoothUsesWrappedMidpoint(t *testing.T) {
	pts := []common.Vec2{{0, 0}, {10, 0}, {20, 0}, {30, 0}, {40, 0}, {50, 0}}
	got := Smooth(pts, 4)
	require.Len(t, got, len(pts))
	// Index 0 pairs index 4 (wrapped from -2) with index 2.
	assert.Equal(t, common.V(30, 0), got[0])
	assert.Equal(t, common.V(20, 0), got[2])
	// Odd windows truncate: window 3 uses ±1.
	assert.Equal(t, common.V(20, 0), Smooth(pts, 3)[2])
}

func TestNormalizeTurn(t *testing.T) {
	for a := -3*math.Pi + 1e-6; a < 3*math.Pi; a += 0.01 {
		got := NormalizeTurn(a)
		assert.True(t, got > -math.Pi && got <= math.Pi, "NormalizeTurn(%v) = %v", a, got)
		assert.InDelta(t, 0, math.Remainder(got-a, 2*math.Pi), 1e-9)
	}
	assert.Equal(t, math.Pi, NormalizeTurn(-math.Pi))
	assert.Equal(t, math.Pi, NormalizeTurn(math.Pi))
	// Only a single correction step is applied.
	assert.InDelta(t, 3*math.Pi, NormalizeTurn(5*math.Pi), 1e-12)
}

func TestRelativeAnglesInRange(t *testing.T) {
	for name, raw := range polygons {
		t.Run(name, func(t *testing.T) {
			p, err := New(raw, DefaultSmoothWindow)
			require.NoError(t, err)
			require.Len(t, p.Segments, p.Len())
			require.Len(t, p.Relative, p.Len())
			for i, r := range p.Relative {
				assert.True(t, r > -math.Pi && r <= math.Pi, "relative[%d] = %v", i, r)
			}
		})
	}
}

func TestCircleApproximation(t *testing.T) {
	const radius = 500.0
	p, err := New(circle(8, common.V(0, 0), radius), DefaultSmoothWindow)
	require.NoError(t, err)

	for i, pt := range p.Points {
		dev := math.Abs(pt.Len()-radius) / radius
		require.Less(t, dev, 0.05, "point %d deviates %.3f of the radius", i, dev)
	}

	// Counter-clockwise traversal turns consistently in one direction.
	for i, r := range p.Relative {
		require.Less(t, r, 0.0, "relative[%d] = %v", i, r)
	}
	mean, std := stat.MeanStdDev(p.Relative, nil)
	assert.Less(t, std/math.Abs(mean), 0.5)
	assert.InDelta(t, -2*math.Pi/float64(p.Len()), mean, 1e-9)
}

func TestSummarizeAndNearest(t *testing.T) {
	p, err := New(circle(8, common.V(0, 0), 500), DefaultSmoothWindow)
	require.NoError(t, err)

	s := p.Summarize()
	assert.Equal(t, 8, s.RawPoints)
	assert.Equal(t, p.Len(), s.DensePoints)
	assert.Equal(t, 8, s.Checkpoints)
	assert.InDelta(t, 2*math.Pi*500, s.Length, 2*math.Pi*500*0.05)
	assert.Greater(t, s.MaxAbsTurn, 0.0)

	for _, i := range []int{0, 17, p.Len() - 1} {
		assert.Equal(t, i, p.Nearest(p.Points[i]))
	}
	assert.Equal(t, p.Points[0], p.At(p.Len()))
	assert.Equal(t, p.Points[p.Len()-1], p.At(-1))
	assert.True(t, p.IsCheckpoint(p.Len()))
}
