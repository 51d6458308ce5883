package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"racing-line-follower/internal/common"
)

// file is the on-disk JSON layout of a track.
type file struct {
	Name       string       `json:"name,omitempty"`
	TrackWidth float64      `json:"track_width"`
	Lines      [][2]float64 `json:"lines"`
}

// Load reads a track from a .json polyline file or a raster image.
func Load(path string) (*Track, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".png", ".jpg", ".jpeg":
		trk, _, err := LoadImage(path)
		return trk, err
	default:
		return nil, fmt.Errorf("track: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadJSON reads a polyline track.
func LoadJSON(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse track %s: %w", path, err)
	}
	lines := make([]common.Vec2, len(f.Lines))
	for i, p := range f.Lines {
		lines[i] = common.V(p[0], p[1])
	}
	name := f.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	t := New(name, lines, f.TrackWidth)
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// SaveJSON writes t in the format LoadJSON reads.
func SaveJSON(path string, t *Track) error {
	f := file{Name: t.Name, TrackWidth: t.Width, Lines: make([][2]float64, len(t.Lines))}
	for i, p := range t.Lines {
		f.Lines[i] = [2]float64{p.X, p.Y}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Walker tuning for LoadImage.
const (
	walkStep      = 20.0 // World units between centerline samples
	walkMaxSteps  = 2000
	walkBeam      = 150.0
	vertexEvery   = 4 // Keep every Nth centerline sample as a polyline vertex
	minClosedWalk = 50
)

// LoadImage decodes a track raster and extracts a sparse closed centerline from it.
func LoadImage(path string) (*Track, *Grid, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer fh.Close()

	img, _, err := image.Decode(fh)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	grid, start, ok := gridFromImage(img)
	if !ok {
		return nil, nil, errors.New("track: image has no drivable surface")
	}
	lines, width := walkCenterline(grid, start)
	t := New(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), lines, width/2)
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}
	return t, grid, nil
}

func gridFromImage(img image.Image) (*Grid, common.Vec2, bool) {
	b := img.Bounds()
	grid := NewGrid(b.Dx(), b.Dy())
	var start common.Vec2
	found, foundStart := false, false
	for x := 0; x < grid.Width; x++ {
		for y := 0; y < grid.Height; y++ {
			ct := ColorToCellType(img.At(b.Min.X+x, b.Min.Y+y))
			grid.Cells[x][y] = cellOf(ct)
			switch {
			case ct == CellStart && !foundStart:
				start, found, foundStart = common.V(float64(x), float64(y)), true, true
			case ct == CellTarmac && !found:
				start, found = common.V(float64(x), float64(y)), true
			}
		}
	}
	return grid, start, found
}

// walkCenterline follows the track from start by casting an arc of beams and stepping
// toward the deepest one. It returns every vertexEvery-th sample and the start width.
func walkCenterline(g *Grid, start common.Vec2) ([]common.Vec2, float64) {
	sx, sy := int(start.X), int(start.Y)
	left, right := sx, sx
	for left > 0 && g.Get(left-1, sy).Type != CellWall {
		left--
	}
	for right < g.Width-1 && g.Get(right+1, sy).Type != CellWall {
		right++
	}
	center := common.V(float64(left+right)/2, float64(sy))
	width := float64(right - left)

	curr := center
	dir := common.V(1, 0)
	var samples []common.Vec2
	for i := 0; i < walkMaxSteps; i++ {
		best, bestDepth := dir.Angle(), 0.0
		base := dir.Angle()
		for a := -math.Pi / 2; a <= math.Pi/2; a += math.Pi / 32 {
			heading := common.FromAngle(base + a)
			depth := 0.0
			for d := 5.0; d < walkBeam; d += 5 {
				if g.At(curr.Add(heading.Scale(d))).Type == CellWall {
					break
				}
				depth = d
			}
			if depth > bestDepth {
				best, bestDepth = base+a, depth
			}
		}
		step := common.FromAngle(best)
		curr = curr.Add(step.Scale(walkStep))
		dir = dir.Scale(0.2).Add(step.Scale(0.8)).Normalize()
		samples = append(samples, curr)

		if i > minClosedWalk && curr.Dist(center) < walkStep*2 {
			break
		}
	}

	lines := make([]common.Vec2, 0, len(samples)/vertexEvery+1)
	for i := 0; i < len(samples); i += vertexEvery {
		lines = append(lines, samples[i])
	}
	return lines, width
}
