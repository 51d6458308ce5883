package control

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"racing-line-follower/internal/common"
	"racing-line-follower/internal/path"
	"racing-line-follower/internal/telemetry"
)

func circlePath(t *testing.T) *path.Path {
	t.Helper()
	raw := make([]common.Vec2, 8)
	for i := range raw {
		raw[i] = common.FromAngle(2 * math.Pi * float64(i) / 8).Scale(500)
	}
	p, err := path.New(raw, path.DefaultSmoothWindow)
	require.NoError(t, err)
	return p
}

// A long straight along +X made of collinear vertices, closed by a return leg.
func straightPath(t *testing.T) *path.Path {
	t.Helper()
	raw := []common.Vec2{
		{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 2000, Y: 0}, {X: 3000, Y: 0}, {X: 4000, Y: 0},
		{X: 4000, Y: 1000}, {X: 0, Y: 1000},
	}
	p, err := path.New(raw, path.DefaultSmoothWindow)
	require.NoError(t, err)
	return p
}

func firstCheckpointAfter(p *path.Path, i int) int {
	for j := i + 1; j < p.Len(); j++ {
		if p.Checkpoints[j] {
			return j
		}
	}
	return 0
}

// turnWindow sums squared turns above noise over length points from next.
func turnWindow(p *path.Path, next, length int, noise float64) (sum float64, count int, maxAbs float64) {
	for i := 0; i < length; i++ {
		a := p.Turn(next + i)
		if math.Abs(a) > noise {
			sum += a * a
			count++
		}
		maxAbs = math.Max(maxAbs, math.Abs(a))
	}
	return sum, count, maxAbs
}

func newController(t *testing.T, p *path.Path, clearance float64, sink telemetry.Sink) *Controller {
	t.Helper()
	c, err := New(p, clearance, DefaultTuning(), sink, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestTuningValidate(t *testing.T) {
	require.NoError(t, DefaultTuning().Validate())

	bad := DefaultTuning()
	bad.CruiseVelocity = 0
	bad.BrakeGain = -1
	bad.NearWindow = 0
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cruise_velocity")
	assert.Contains(t, err.Error(), "brake_gain")
	assert.Contains(t, err.Error(), "near_window")
}

func TestNewRejects(t *testing.T) {
	p := circlePath(t)

	_, err := New(nil, 10, DefaultTuning(), nil, nil)
	assert.ErrorIs(t, err, path.ErrEmptyPath)

	_, err = New(p, -1, DefaultTuning(), nil, nil)
	assert.Error(t, err)

	tu := DefaultTuning()
	tu.ThrottleGain = 0
	_, err = New(p, 10, tu, nil, nil)
	assert.Error(t, err)
}

func TestTrackerPhaseOneSkipsReachedWaypoint(t *testing.T) {
	p := circlePath(t)
	tr := NewTracker(p, 1)
	st := NewState(10)
	st.NextWaypoint = 5
	require.False(t, p.IsCheckpoint(6))

	moved := tr.Advance(st, p.Points[5])
	assert.GreaterOrEqual(t, moved, 1)
	assert.Equal(t, 5+moved, st.NextWaypoint)
}

func TestTrackerStopsAtCheckpoint(t *testing.T) {
	p := circlePath(t)
	cp := firstCheckpointAfter(p, 0)
	require.Greater(t, cp, 3)

	tr := NewTracker(p, 1000)
	st := NewState(10)
	st.NextWaypoint = cp - 3

	moved := tr.Advance(st, p.Points[cp])
	assert.Equal(t, 3, moved)
	assert.Equal(t, cp, st.NextWaypoint)
}

func TestTrackerSecondPassHoldsOnCheckpoint(t *testing.T) {
	p := circlePath(t)
	cp := firstCheckpointAfter(p, 0)
	require.Greater(t, cp, 0)
	for i := 1; i <= 4; i++ {
		require.False(t, p.IsCheckpoint(cp+i))
	}
	tr := NewTracker(p, 0)
	pos := p.Points[cp+2]

	st := NewState(10)
	st.NextWaypoint = cp
	assert.Zero(t, tr.Advance(st, pos))
	assert.Equal(t, cp, st.NextWaypoint)

	st = NewState(10)
	st.NextWaypoint = cp + 1
	assert.Equal(t, 1, tr.Advance(st, pos))
	assert.Equal(t, cp+2, st.NextWaypoint)
}

func TestTrackerOvertakenPoint(t *testing.T) {
	p := circlePath(t)
	tr := NewTracker(p, 1)
	st := NewState(10)
	st.NextWaypoint = 2

	// The vehicle is sitting on point 3 but the tracker still points at 2.
	moved := tr.Advance(st, p.Points[3].Add(common.V(0.5, 0.5)))
	assert.Equal(t, 1, moved)
	assert.Equal(t, 3, st.NextWaypoint)
}

func TestTrackerMonotonicAndLaps(t *testing.T) {
	p := circlePath(t)
	n := p.Len()
	tr := NewTracker(p, 15)
	st := NewState(10)

	total := 0
	for lap := 0; lap < 2; lap++ {
		for i := 0; i < n; i++ {
			old := st.NextWaypoint
			jitter := common.V(math.Sin(float64(i))*3, math.Cos(float64(i))*3)
			moved := tr.Advance(st, p.Points[i].Add(jitter))
			require.GreaterOrEqual(t, moved, 0)
			require.Equal(t, common.Wrap(old+moved, n), st.NextWaypoint)
			total += moved
		}
	}
	assert.Equal(t, st.Laps*n+st.NextWaypoint, total)
	assert.GreaterOrEqual(t, st.Laps, 1)
}

func TestTrackerWrapsStaleIndex(t *testing.T) {
	p := circlePath(t)
	tr := NewTracker(p, 1)
	st := NewState(10)
	st.NextWaypoint = p.Len() + 5

	tr.Advance(st, p.Points[5])
	assert.Less(t, st.NextWaypoint, p.Len())
}

func TestTickStraightLine(t *testing.T) {
	p := straightPath(t)
	rec := &telemetry.Recorder{}
	c := newController(t, p, 40, rec)

	st := NewState(10)
	pos := common.V(1500, 0)
	st.NextWaypoint = p.Nearest(pos)

	res := c.Tick(st, common.Pose(pos, 0), common.V(400, 0))

	assert.InDelta(t, 400, res.Velocity, 1e-9)
	assert.Equal(t, 52, res.Lookahead)
	assert.Equal(t, 15, res.SteerAhead)
	assert.InDelta(t, 0, res.UpcomingAngle, 1e-9)
	assert.InDelta(t, 0, res.CurrentAngle, 1e-9)
	assert.InDelta(t, 420, res.TargetVelocity, 1e-6)
	assert.Greater(t, res.Throttle, 0.0)
	assert.InDelta(t, 0, res.Steer, 1e-6)
	assert.Greater(t, res.Target.X, pos.X)

	require.Equal(t, 1, rec.Len())
	r := rec.Records()[0]
	assert.Equal(t, res.Throttle, r.Throttle)
	assert.Equal(t, res.Steer, r.Steer)
	assert.Equal(t, res.PathDistance, r.PathDis)
	assert.Equal(t, 1500.0, r.X)
}

func TestTickSharpTurnBrakes(t *testing.T) {
	p := straightPath(t)
	c := newController(t, p, 40, nil)

	straight := NewState(10)
	straight.NextWaypoint = p.Nearest(common.V(1500, 0))
	onStraight := c.Tick(straight, common.Pose(common.V(1500, 0), 0), common.V(400, 0))

	corner := NewState(10)
	corner.NextWaypoint = p.Nearest(common.V(3800, 0))
	beforeCorner := c.Tick(corner, common.Pose(p.At(corner.NextWaypoint), 0), common.V(400, 0))

	assert.Greater(t, beforeCorner.BreakReduction, 0.0)
	assert.Greater(t, beforeCorner.MaxAngle, DefaultTuning().NoiseThreshold)
	assert.Less(t, beforeCorner.TargetVelocity, onStraight.TargetVelocity)
	assert.Less(t, beforeCorner.Throttle, onStraight.Throttle)
}

func TestTickNearTermPenalty(t *testing.T) {
	p := circlePath(t)
	tu := DefaultTuning()
	c := newController(t, p, 0, nil)

	st := NewState(10)
	st.NextWaypoint = 10
	heading := p.Segments[10].Angle
	res := c.Tick(st, common.Pose(p.Points[10], heading), common.FromAngle(heading).Scale(300))
	require.Equal(t, 10, st.NextWaypoint)
	require.InDelta(t, 300, res.Velocity, 1e-9)

	var current float64
	for i := 0; i < 5; i++ {
		a := p.Turn(10 + i)
		current += a * a
	}
	current /= 5
	require.Greater(t, current, 0.0)
	assert.InDelta(t, current, res.CurrentAngle, 1e-12)

	excess := res.Velocity - 150
	assert.InDelta(t, excess, res.Excess, 1e-12)
	assert.InDelta(t, current*800*excess, res.FreeTrackSpeed, 1e-9)
	assert.Greater(t, res.FreeTrackSpeed, 0.0)

	sum, count, _ := turnWindow(p, 10, res.Lookahead, tu.NoiseThreshold)
	require.Positive(t, count)
	assert.InDelta(t, sum/float64(count)*excess*250, res.BreakReduction, 1e-9)
	assert.InDelta(t, 420-res.FreeTrackSpeed-res.BreakReduction, res.TargetVelocity, 1e-9)
	assert.InDelta(t, common.Clamp((res.TargetVelocity-res.Velocity)*0.12, -1, 1), res.Throttle, 1e-12)
}

func TestTickUpcomingAngleCountsTurningPoints(t *testing.T) {
	p := straightPath(t)
	tu := DefaultTuning()
	const speed = 400.0
	lookahead := max(int(speed*tu.LookaheadGain), 1)

	mixed, straight := -1, -1
	for k := 0; k < p.Len() && (mixed < 0 || straight < 0); k++ {
		_, count, _ := turnWindow(p, k, lookahead, tu.NoiseThreshold)
		switch {
		case count == 0 && straight < 0:
			straight = k
		case count > 0 && count < lookahead && mixed < 0:
			mixed = k
		}
	}
	require.GreaterOrEqual(t, mixed, 0, "no window mixes straight and turning points")
	require.GreaterOrEqual(t, straight, 0, "no straight window")

	tick := func(k int) Result {
		c := newController(t, p, 0, nil)
		st := NewState(10)
		st.NextWaypoint = k
		res := c.Tick(st, common.Pose(p.Points[k], 0), common.V(speed, 0))
		require.Equal(t, k, st.NextWaypoint)
		require.Equal(t, lookahead, res.Lookahead)
		return res
	}

	res := tick(mixed)
	sum, count, maxAbs := turnWindow(p, mixed, lookahead, tu.NoiseThreshold)
	assert.InDelta(t, sum/float64(count), res.UpcomingAngle, 1e-12)
	assert.Greater(t, res.UpcomingAngle, sum/float64(lookahead))
	assert.InDelta(t, maxAbs, res.MaxAngle, 1e-12)

	res = tick(straight)
	assert.Zero(t, res.UpcomingAngle)
	assert.Zero(t, res.BreakReduction)
	assert.LessOrEqual(t, res.MaxAngle, tu.NoiseThreshold)
}

func TestTickBelowSafeSpeedHasNoPenalty(t *testing.T) {
	p := circlePath(t)
	c := newController(t, p, 40, nil)
	st := NewState(10)

	res := c.Tick(st, common.Pose(p.Points[0], math.Pi/2), common.V(0, 100))
	assert.Zero(t, res.Excess)
	assert.Zero(t, res.FreeTrackSpeed)
	assert.Zero(t, res.BreakReduction)
	assert.Zero(t, res.SteerAhead)
	assert.Equal(t, 13, res.Lookahead)
	assert.InDelta(t, 420, res.TargetVelocity, 1e-9)
	assert.Equal(t, 1.0, res.Throttle)
}

func TestTickSteersTowardTarget(t *testing.T) {
	p := straightPath(t)
	c := newController(t, p, 40, nil)
	pos := common.V(1500, 0)

	left := NewState(10)
	left.NextWaypoint = p.Nearest(pos)
	res := c.Tick(left, common.Pose(pos, -0.3), common.V(200, 0))
	assert.Equal(t, 1.0, res.Steer)

	right := NewState(10)
	right.NextWaypoint = p.Nearest(pos)
	res = c.Tick(right, common.Pose(pos, 0.3), common.V(200, 0))
	assert.Equal(t, -1.0, res.Steer)
}

func TestTickDeterministic(t *testing.T) {
	p := circlePath(t)
	run := func() []Result {
		c := newController(t, p, 40, nil)
		st := NewState(20)
		var out []Result
		for i := 0; i < 50; i++ {
			pos := p.At(i * 3).Add(common.V(2, -1))
			heading := p.Segments[common.Wrap(i*3, p.Len())].Angle
			vel := common.FromAngle(heading).Scale(float64(100 + i*8))
			out = append(out, c.Tick(st, common.Pose(pos, heading), vel))
		}
		return out
	}
	a, b := run(), run()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("runs differ (-first +second):\n%s", diff)
	}
}

func TestTickRecordsHistoryAndLaps(t *testing.T) {
	p := circlePath(t)
	n := p.Len()
	core, logs := observer.New(zapcore.InfoLevel)
	c, err := New(p, 1, DefaultTuning(), nil, zap.New(core))
	require.NoError(t, err)

	st := NewState(3)
	st.NextWaypoint = n - 2
	for _, i := range []int{n - 1, 0, 1} {
		c.Tick(st, common.Pose(p.Points[i], 0), common.Vec2{})
	}

	assert.Equal(t, 1, st.Laps)
	assert.Equal(t, 3, st.Ticks)
	assert.Equal(t, []common.Vec2{p.Points[n-1], p.Points[0], p.Points[1]}, st.History())
	assert.Equal(t, 1, logs.FilterMessage("lap completed").Len())
}

func TestTelemetryYIsInverted(t *testing.T) {
	p := circlePath(t)
	rec := &telemetry.Recorder{}
	c := newController(t, p, 40, rec)
	st := NewState(10)

	c.Tick(st, common.Pose(common.V(10, 250), 0), common.V(0, 0))
	r := rec.Records()[0]
	assert.Equal(t, 10.0, r.X)
	assert.Equal(t, -250.0, r.Y)
}
