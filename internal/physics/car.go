// Package physics is a small arcade vehicle model that stands in for a race host. It
// consumes throttle and steering commands and reports pose and velocity.
package physics

import (
	"math"

	"racing-line-follower/internal/common"
	"racing-line-follower/internal/track"
)

const (
	MaxSpeed         = 600.0 // Units per second
	Acceleration     = 350.0 // Units per second squared at full throttle
	Braking          = 700.0 // Units per second squared at full brake
	Friction         = 30.0  // Rolling resistance, units per second squared
	TurnSpeed        = 2.5   // Radians per second at full lock
	OffTrackFriction = 1.5   // Fraction of speed lost per second on gravel
	Grip             = 0.9   // Velocity blend toward the heading per 1/60 s
	GravelGrip       = 0.5
)

// Car is a rigid body driven by the bot's commands.
type Car struct {
	Position common.Vec2
	Velocity common.Vec2
	Heading  float64 // Radians
	Speed    float64 // Scalar forward speed, never negative
	Crashed  bool
	OnGravel bool

	// Dimensions in world units
	Width  float64
	Length float64

	Ticks int
}

// NewCar places a stationary car at (x, y) facing heading.
func NewCar(x, y, heading float64) *Car {
	return &Car{
		Position: common.Vec2{X: x, Y: y},
		Heading:  heading,
		Width:    10,
		Length:   22.5,
	}
}

// Pose returns the car's world transform.
func (c *Car) Pose() common.Transform {
	return common.Pose(c.Position, c.Heading)
}

// Update advances the car by dt seconds.
// throttle: -1 (full brake) to 1 (full throttle)
// steering: -1 to 1, positive turns toward increasing heading
// A nil grid means an unbounded tarmac plane.
func (c *Car) Update(grid *track.Grid, throttle, steering, dt float64) {
	if c.Crashed || dt <= 0 {
		return
	}
	throttle = common.Clamp(throttle, -1, 1)
	steering = common.Clamp(steering, -1, 1)
	c.Ticks++

	// 1. Apply input
	if throttle > 0 {
		c.Speed += throttle * Acceleration * dt
	} else {
		c.Speed += throttle * Braking * dt
	}

	// 2. Rolling resistance
	c.Speed = math.Max(c.Speed-Friction*dt, 0)
	c.Speed = math.Min(c.Speed, MaxSpeed)

	// 3. Steering only bites while moving
	if c.Speed > 0.1 {
		c.Heading += steering * TurnSpeed * dt
	}

	// 4. Collision against the corners at the new position
	grip := Grip
	c.OnGravel = false
	newPos := c.Position.Add(c.Velocity.Scale(dt))
	if grid != nil {
		halfW, halfL := c.Width/2, c.Length/2
		corners := []common.Vec2{
			{X: halfL, Y: halfW},
			{X: halfL, Y: -halfW},
			{X: -halfL, Y: halfW},
			{X: -halfL, Y: -halfW},
		}
		pose := common.Pose(newPos, c.Heading)
		for _, off := range corners {
			switch grid.At(pose.Apply(off)).Type {
			case track.CellWall:
				c.Crashed = true
				c.Speed = 0
				c.Velocity = common.Vec2{}
				return
			case track.CellGravel:
				c.OnGravel = true
			}
		}
	}
	if c.OnGravel {
		grip = GravelGrip
		c.Speed *= math.Max(1-OffTrackFriction*dt, 0)
	}

	// 5. Velocity lags the heading, which gives a little drift
	c.Position = newPos
	blend := 1 - math.Pow(1-grip, dt*60)
	target := common.FromAngle(c.Heading).Scale(c.Speed)
	c.Velocity = c.Velocity.Lerp(target, blend)
}
