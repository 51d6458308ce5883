package common

// CubicBez is a cubic Bezier segment given by its control polygon.
type CubicBez struct {
	P0, P1, P2, P3 Vec2
}

// Eval returns the point at parameter t in [0, 1].
func (c CubicBez) Eval(t float64) Vec2 {
	mt := 1 - t
	a := c.P0.Scale(mt * mt * mt)
	b := c.P1.Scale(3 * mt * mt * t)
	d := c.P2.Scale(3 * mt * t * t)
	e := c.P3.Scale(t * t * t)
	return a.Add(b).Add(d).Add(e)
}

// Points returns the control polygon in order.
func (c CubicBez) Points() [4]Vec2 {
	return [4]Vec2{c.P0, c.P1, c.P2, c.P3}
}
