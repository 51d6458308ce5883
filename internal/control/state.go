package control

import "racing-line-follower/internal/common"

// State is the mutable per-bot control state. It is owned by a single caller and only
// changed inside Tracker.Advance and Controller.Tick.
type State struct {
	// NextWaypoint indexes the dense path point the vehicle has not yet passed.
	NextWaypoint int
	// SteerAhead is the steering target offset chosen on the last tick.
	SteerAhead int
	// Lookahead is the curvature window chosen on the last tick.
	Lookahead int
	// Laps counts wraps of NextWaypoint past the end of the path.
	Laps int
	// Ticks counts Controller.Tick calls.
	Ticks int

	history *common.Ring
}

// NewState returns a state starting at waypoint 0 with room for historyLen positions.
func NewState(historyLen int) *State {
	return &State{history: common.NewRing(historyLen)}
}

// History returns the trailing vehicle positions, oldest first.
func (s *State) History() []common.Vec2 {
	if s.history == nil {
		return nil
	}
	return s.history.Slice()
}

func (s *State) record(p common.Vec2) {
	if s.history == nil {
		s.history = common.NewRing(DefaultTuning().HistoryLength)
	}
	s.history.Push(p)
}
