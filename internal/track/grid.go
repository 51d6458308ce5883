package track

import (
	"image"
	"image/color"
	"math"

	"racing-line-follower/internal/common"
)

// CellType represents the type of surface in a grid cell.
type CellType int

const (
	CellWall CellType = iota
	CellTarmac
	CellGravel
	CellStart
)

// Cell represents a single unit of the track surface.
type Cell struct {
	Type     CellType
	Friction float64 // 1.0 for Tarmac, 0.4 for Gravel, 0 for walls
}

func cellOf(t CellType) Cell {
	switch t {
	case CellWall:
		return Cell{Type: t}
	case CellGravel:
		return Cell{Type: t, Friction: 0.4}
	default:
		return Cell{Type: t, Friction: 1.0}
	}
}

// Grid is a discretised surface map, one cell per world unit.
type Grid struct {
	Width, Height int
	Cells         [][]Cell
}

// NewGrid creates a grid of walls.
func NewGrid(width, height int) *Grid {
	cells := make([][]Cell, width)
	for i := range cells {
		cells[i] = make([]Cell, height)
	}
	return &Grid{Width: width, Height: height, Cells: cells}
}

// Get returns the cell at (x, y). Returns Wall if out of bounds.
func (g *Grid) Get(x, y int) Cell {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return Cell{Type: CellWall}
	}
	return g.Cells[x][y]
}

// At returns the cell under a world position.
func (g *Grid) At(p common.Vec2) Cell {
	return g.Get(int(math.Floor(p.X)), int(math.Floor(p.Y)))
}

// Rasterize paints a track into a grid: tarmac within Width of the centerline,
// gravel within a further margin, walls elsewhere. The first vertex is marked as start.
func Rasterize(t *Track, margin float64) *Grid {
	_, max := t.Bounds()
	pad := t.Width + margin + 1
	w := int(math.Ceil(max.X + pad))
	h := int(math.Ceil(max.Y + pad))
	g := NewGrid(w, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			d := t.DistanceToCenterline(common.V(float64(x)+0.5, float64(y)+0.5))
			switch {
			case d <= t.Width:
				g.Cells[x][y] = cellOf(CellTarmac)
			case d <= t.Width+margin:
				g.Cells[x][y] = cellOf(CellGravel)
			}
		}
	}
	if len(t.Lines) > 0 {
		s := t.Lines[0]
		for dx := -2; dx <= 2; dx++ {
			for dy := -2; dy <= 2; dy++ {
				x, y := int(s.X)+dx, int(s.Y)+dy
				if g.Get(x, y).Type == CellTarmac {
					g.Cells[x][y] = cellOf(CellStart)
				}
			}
		}
	}
	return g
}

// Image renders the grid using the same palette ColorToCellType reads back.
func (g *Grid) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			var c color.RGBA
			switch g.Cells[x][y].Type {
			case CellTarmac:
				c = color.RGBA{255, 255, 255, 255}
			case CellGravel:
				c = color.RGBA{0, 200, 0, 255}
			case CellStart:
				c = color.RGBA{255, 0, 0, 255}
			default:
				c = color.RGBA{0, 0, 0, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// ColorToCellType maps a pixel color to a cell type.
func ColorToCellType(c color.Color) CellType {
	r, g, b, _ := c.RGBA()
	r8, g8, b8 := r>>8, g>>8, b>>8

	// Red = Start/Finish
	if r8 > 200 && g8 < 100 && b8 < 100 {
		return CellStart
	}
	// Green = Gravel
	if g8 > r8+50 && g8 > b8+50 {
		return CellGravel
	}
	// Dark = Wall
	if r8 < 50 && g8 < 50 && b8 < 50 {
		return CellWall
	}
	// Anything bright that didn't match above is an anti-aliased edge of tarmac.
	return CellTarmac
}
