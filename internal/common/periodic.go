package common

// Wrap maps any index onto [0, n) for a closed sequence of length n.
// n must be positive.
func Wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Ring is a fixed-capacity buffer keeping the most recent positions.
type Ring struct {
	data []Vec2
	pos  int
	full bool
}

// NewRing creates a Ring holding at most capacity points.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{data: make([]Vec2, capacity)}
}

// Push records p, evicting the oldest point once full.
func (r *Ring) Push(p Vec2) {
	r.data[r.pos] = p
	r.pos++
	if r.pos >= len(r.data) {
		r.pos = 0
		r.full = true
	}
}

// Len returns the number of stored points.
func (r *Ring) Len() int {
	if r.full {
		return len(r.data)
	}
	return r.pos
}

// Cap returns the capacity.
func (r *Ring) Cap() int {
	return len(r.data)
}

// Slice returns the stored points, oldest first.
func (r *Ring) Slice() []Vec2 {
	out := make([]Vec2, r.Len())
	if r.full {
		n := copy(out, r.data[r.pos:])
		copy(out[n:], r.data[:r.pos])
	} else {
		copy(out, r.data[:r.pos])
	}
	return out
}
