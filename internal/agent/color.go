package agent

import (
	"image/color"
	"math"

	"racing-line-follower/internal/common"
)

// TurnColorPower scales relative angles in TurnColor.
const TurnColorPower = 1000

// TurnColor maps a relative angle to an overlay colour: white when straight, green for
// positive angles and magenta for negative ones.
func TurnColor(angle, power float64) color.RGBA {
	s := int(angle * power)
	r := 255 - max(s, 0)
	g := 255 + min(s, 0)
	b := 255 - clampInt(s, 0, 255)
	return color.RGBA{R: uint8(clampInt(r, 0, 255)), G: uint8(clampInt(g, 0, 255)), B: uint8(clampInt(b, 0, 255)), A: 255}
}

func clampInt(v, lo, hi int) int {
	return int(common.Clamp(float64(v), float64(lo), float64(hi)))
}

// TurnColors colours every point of a path by its relative angle.
func TurnColors(relative []float64) []color.RGBA {
	out := make([]color.RGBA, len(relative))
	for i, a := range relative {
		if math.IsNaN(a) {
			a = 0
		}
		out[i] = TurnColor(a, TurnColorPower)
	}
	return out
}
