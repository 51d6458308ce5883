// Package path builds the dense, smoothed reference path a bot follows around a closed
// track, together with the per-point curvature tables the controller reads.
package path

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"racing-line-follower/internal/common"
)

// ErrEmptyPath is returned when there is nothing to build a path from.
var ErrEmptyPath = errors.New("path: no points")

// Path is the read-only reference path. All slices share index alignment and the index
// space is circular.
type Path struct {
	Raw         []common.Vec2
	Points      []common.Vec2 // Smoothed dense samples
	Checkpoints []bool
	Controls    []common.CubicBez
	Segments    []Segment
	Relative    []float64
}

// New runs the full construction pipeline: upscale, smooth, extract angles.
func New(raw []common.Vec2, window int) (*Path, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyPath
	}
	dense, checkpoints, controls := Upscale(raw)
	points := Smooth(dense, window)
	segments, relative := Angles(points)

	rawCopy := make([]common.Vec2, len(raw))
	copy(rawCopy, raw)
	return &Path{
		Raw:         rawCopy,
		Points:      points,
		Checkpoints: checkpoints,
		Controls:    controls,
		Segments:    segments,
		Relative:    relative,
	}, nil
}

// Len returns the number of dense points.
func (p *Path) Len() int {
	return len(p.Points)
}

// At returns the dense point at a wrapped index.
func (p *Path) At(i int) common.Vec2 {
	return p.Points[common.Wrap(i, len(p.Points))]
}

// IsCheckpoint reports whether the wrapped index is a raw vertex sample.
func (p *Path) IsCheckpoint(i int) bool {
	return p.Checkpoints[common.Wrap(i, len(p.Checkpoints))]
}

// Turn returns the relative angle at a wrapped index.
func (p *Path) Turn(i int) float64 {
	return p.Relative[common.Wrap(i, len(p.Relative))]
}

// Nearest returns the index of the dense point closest to pos.
func (p *Path) Nearest(pos common.Vec2) int {
	best, bestIdx := math.MaxFloat64, 0
	for i, pt := range p.Points {
		dx, dy := pos.X-pt.X, pos.Y-pt.Y
		if d := dx*dx + dy*dy; d < best {
			best, bestIdx = d, i
		}
	}
	return bestIdx
}

// Summary describes the curvature distribution of a path.
type Summary struct {
	RawPoints   int
	DensePoints int
	Checkpoints int
	Length      float64
	MeanTurn    float64 // Mean signed relative angle
	StdDevTurn  float64
	MaxAbsTurn  float64
}

// Summarize computes a Summary for diagnostics and logging.
func (p *Path) Summarize() Summary {
	s := Summary{RawPoints: len(p.Raw), DensePoints: len(p.Points)}
	for _, c := range p.Checkpoints {
		if c {
			s.Checkpoints++
		}
	}
	lengths := make([]float64, len(p.Segments))
	for i, seg := range p.Segments {
		lengths[i] = seg.Length
	}
	s.Length = floats.Sum(lengths)
	if len(p.Relative) == 0 {
		return s
	}
	s.MeanTurn, s.StdDevTurn = stat.MeanStdDev(p.Relative, nil)
	abs := make([]float64, len(p.Relative))
	for i, r := range p.Relative {
		abs[i] = math.Abs(r)
	}
	s.MaxAbsTurn = floats.Max(abs)
	return s
}
