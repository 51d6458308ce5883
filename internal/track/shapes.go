package track

import (
	"fmt"
	"math"
	"sort"

	"racing-line-follower/internal/common"
)

// Circle returns n equally spaced vertices on a circle, counter-clockwise from +X.
func Circle(name string, n int, center common.Vec2, radius, width float64) *Track {
	return Oval(name, n, center, radius, radius, width)
}

// Oval returns n vertices on an axis-aligned ellipse.
func Oval(name string, n int, center common.Vec2, rx, ry, width float64) *Track {
	pts := make([]common.Vec2, n)
	for i := range pts {
		th := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = center.Add(common.V(rx*math.Cos(th), ry*math.Sin(th)))
	}
	return New(name, pts, width)
}

// Kidney returns an irregular six-corner track with one tight hairpin.
func Kidney(name string, width float64) *Track {
	return New(name, []common.Vec2{
		{X: 150, Y: 150}, {X: 1050, Y: 120}, {X: 1350, Y: 450},
		{X: 900, Y: 570}, {X: 675, Y: 900}, {X: 180, Y: 780},
	}, width)
}

// Shapes builds the named sample tracks.
var Shapes = map[string]func() *Track{
	"circle": func() *Track { return Circle("circle", 8, common.V(600, 600), 500, 40) },
	"oval":   func() *Track { return Oval("oval", 12, common.V(700, 450), 600, 350, 40) },
	"kidney": func() *Track { return Kidney("kidney", 40) },
}

// Shape returns the sample track called name.
func Shape(name string) (*Track, error) {
	build, ok := Shapes[name]
	if !ok {
		return nil, fmt.Errorf("unknown track shape %q (have %v)", name, ShapeNames())
	}
	return build(), nil
}

// ShapeNames lists the sample tracks in sorted order.
func ShapeNames() []string {
	names := make([]string, 0, len(Shapes))
	for n := range Shapes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
