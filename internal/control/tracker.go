package control

import (
	"racing-line-follower/internal/common"
	"racing-line-follower/internal/path"
)

// Tracker advances State.NextWaypoint along a path as the vehicle moves.
type Tracker struct {
	path *path.Path
	// Clearance is the radius within which a waypoint counts as reached.
	Clearance float64
}

// NewTracker binds a tracker to a path.
func NewTracker(p *path.Path, clearance float64) *Tracker {
	return &Tracker{path: p, Clearance: clearance}
}

// Advance moves st.NextWaypoint forward to the closest point ahead of pos and returns
// how many steps it moved. It never moves backwards.
//
// The first pass skips every waypoint within Clearance, stopping before a checkpoint.
// The second pass keeps stepping while a point further ahead is closer than the current
// waypoint was, stopping on a checkpoint. Each pass is bounded by one lap.
func (t *Tracker) Advance(st *State, pos common.Vec2) int {
	n := t.path.Len()
	pts := t.path.Points
	moved := 0
	st.NextWaypoint = common.Wrap(st.NextWaypoint, n)

	for steps := 0; steps < n && pos.Dist(pts[st.NextWaypoint]) < t.Clearance; steps++ {
		if t.path.IsCheckpoint(st.NextWaypoint + 1) {
			break
		}
		moved += t.step(st, n)
	}

	lastDist := pos.Dist(pts[st.NextWaypoint])
	for i := 1; i <= n && pos.Dist(t.path.At(st.NextWaypoint+i)) < lastDist; i++ {
		if t.path.IsCheckpoint(st.NextWaypoint) {
			break
		}
		moved += t.step(st, n)
	}
	return moved
}

func (t *Tracker) step(st *State, n int) int {
	st.NextWaypoint = common.Wrap(st.NextWaypoint+1, n)
	if st.NextWaypoint == 0 {
		st.Laps++
	}
	return 1
}
