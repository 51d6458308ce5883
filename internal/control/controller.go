package control

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"racing-line-follower/internal/common"
	"racing-line-follower/internal/path"
	"racing-line-follower/internal/telemetry"
)

// Result holds the commands and every intermediate term of one tick.
type Result struct {
	Throttle float64
	Steer    float64

	Velocity        float64
	Lookahead       int
	UpcomingAngle   float64
	MaxAngle        float64
	CurrentAngle    float64
	Excess          float64 // Speed above Tuning.SafeSpeed, never negative
	FreeTrackSpeed  float64 // Penalty from the near-term curvature
	BreakMultiplier float64
	BreakReduction  float64 // Penalty from the upcoming curvature
	TargetVelocity  float64
	SteerAhead      int
	Target          common.Vec2 // Steering target in world space
	PathDistance    float64     // Distance from the vehicle to Target
	Bearing         float64     // Bearing of Target in the vehicle frame, degrees
	Advanced        int         // Waypoints the tracker moved this tick
}

// Controller turns a vehicle pose and velocity into throttle and steering.
type Controller struct {
	path    *path.Path
	tracker *Tracker
	tuning  Tuning
	sink    telemetry.Sink
	log     *zap.Logger
}

// New builds a controller over p. A nil sink discards telemetry and a nil logger is
// replaced by a no-op one.
func New(p *path.Path, clearance float64, tuning Tuning, sink telemetry.Sink, log *zap.Logger) (*Controller, error) {
	if p == nil || p.Len() == 0 {
		return nil, path.ErrEmptyPath
	}
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	if clearance < 0 || math.IsNaN(clearance) {
		return nil, fmt.Errorf("invalid clearance %v", clearance)
	}
	if sink == nil {
		sink = telemetry.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		path:    p,
		tracker: NewTracker(p, clearance),
		tuning:  tuning,
		sink:    sink,
		log:     log,
	}, nil
}

// Path returns the path the controller follows.
func (c *Controller) Path() *path.Path { return c.path }

// Tuning returns the active constants.
func (c *Controller) Tuning() Tuning { return c.tuning }

// Tracker returns the progress tracker.
func (c *Controller) Tracker() *Tracker { return c.tracker }

// Tick runs one control step. It advances st, emits one telemetry record and returns
// throttle and steer in [-1, 1].
func (c *Controller) Tick(st *State, pose common.Transform, vel common.Vec2) Result {
	tu := c.tuning
	pos := pose.P
	st.Ticks++
	st.record(pos)

	laps := st.Laps
	res := Result{Advanced: c.tracker.Advance(st, pos)}
	if st.Laps != laps {
		c.log.Info("lap completed", zap.Int("laps", st.Laps), zap.Int("tick", st.Ticks))
	}
	next := st.NextWaypoint

	v := vel.Len()
	res.Velocity = v

	res.Lookahead = max(int(v*tu.LookaheadGain), 1)
	st.Lookahead = res.Lookahead
	var sum float64
	var count int
	for i := 0; i < res.Lookahead; i++ {
		a := c.path.Turn(next + i)
		if math.Abs(a) > tu.NoiseThreshold {
			sum += a * a
			count++
		}
		res.MaxAngle = math.Max(res.MaxAngle, math.Abs(a))
	}
	if count > 0 {
		res.UpcomingAngle = sum / float64(count)
	}

	var current float64
	for i := 0; i < tu.NearWindow; i++ {
		a := c.path.Turn(next + i)
		current += a * a
	}
	res.CurrentAngle = current / float64(tu.NearWindow)

	res.Excess = math.Max(v-tu.SafeSpeed, 0)
	res.BreakMultiplier = res.UpcomingAngle * res.Excess
	res.FreeTrackSpeed = res.CurrentAngle * tu.CurrentGain * res.Excess
	res.BreakReduction = res.BreakMultiplier * tu.BrakeGain
	res.TargetVelocity = tu.CruiseVelocity - res.FreeTrackSpeed - res.BreakReduction
	res.Throttle = common.Clamp((res.TargetVelocity-v)*tu.ThrottleGain, -1, 1)

	res.SteerAhead = int(res.Excess * tu.SteerAheadGain)
	st.SteerAhead = res.SteerAhead
	res.Target = c.path.At(next + res.SteerAhead)
	local := pose.ToLocal(res.Target)
	res.PathDistance = local.Len()
	res.Bearing = common.PolarDegrees(local)
	res.Steer = common.Clamp(res.Bearing/tu.SteerDegreesFull, -1, 1)

	c.sink.Emit(telemetry.Record{
		X:               pos.X,
		Y:               -pos.Y,
		PathDis:         res.PathDistance,
		UpcomingAngle:   res.UpcomingAngle,
		FreeTrackSpeed:  res.FreeTrackSpeed,
		BreakReduction:  res.BreakReduction,
		Throttle:        res.Throttle,
		Velocity:        v,
		Steer:           res.Steer,
		TargetVelocity:  res.TargetVelocity,
		MaxAngle:        res.MaxAngle,
		BreakMultiplier: res.BreakMultiplier,
	})
	return res
}
