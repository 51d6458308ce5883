package common

import "math"

// Transform is a rigid 2D pose: a rotation by Heading followed by a translation to P.
// It maps vehicle-local coordinates (+X forward) into world coordinates.
type Transform struct {
	P       Vec2
	Heading float64 // Radians
}

// Pose builds a Transform at position p facing heading.
func Pose(p Vec2, heading float64) Transform {
	return Transform{P: p, Heading: heading}
}

// Apply maps a local point into world space.
func (t Transform) Apply(local Vec2) Vec2 {
	return local.Rotate(t.Heading).Add(t.P)
}

// Inverse returns the transform mapping world space back into local space.
func (t Transform) Inverse() Transform {
	return Transform{
		P:       t.P.Scale(-1).Rotate(-t.Heading),
		Heading: -t.Heading,
	}
}

// ToLocal maps a world point into the frame of t.
func (t Transform) ToLocal(world Vec2) Vec2 {
	return t.Inverse().Apply(world)
}

// Forward returns the unit vector of the heading in world space.
func (t Transform) Forward() Vec2 {
	return FromAngle(t.Heading)
}

// PolarDegrees returns the bearing of v in degrees, in (-180, 180].
func PolarDegrees(v Vec2) float64 {
	return v.Angle() * 180 / math.Pi
}
