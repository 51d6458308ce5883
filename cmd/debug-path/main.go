package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"racing-line-follower/internal/common"
	"racing-line-follower/internal/logging"
	"racing-line-follower/internal/path"
	"racing-line-follower/internal/track"
)

var (
	colorRaw        = color.RGBA{120, 120, 120, 255}
	colorControl    = color.RGBA{255, 150, 0, 255}
	colorDense      = color.RGBA{195, 2, 217, 255}
	colorCheckpoint = color.RGBA{255, 0, 0, 255}
	colorTurn       = color.RGBA{30, 100, 200, 255}
)

func xys(pts []common.Vec2) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return out
}

// closed repeats the first point so a polygon plots as a loop.
func closed(pts []common.Vec2) []common.Vec2 {
	if len(pts) == 0 {
		return nil
	}
	return append(append([]common.Vec2(nil), pts...), pts[0])
}

func configureLegend(p *plot.Plot) {
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
}

// geometryPlot draws the raw polygon, Bezier control arms, dense path and checkpoints.
func geometryPlot(p *path.Path, title string) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "x"
	pl.Y.Label.Text = "y"
	pl.Add(plotter.NewGrid())

	raw, err := plotter.NewLine(xys(closed(p.Raw)))
	if err != nil {
		return nil, fmt.Errorf("raw polygon: %w", err)
	}
	raw.Color = colorRaw
	raw.Width = vg.Points(1)
	raw.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	pl.Add(raw)
	pl.Legend.Add("raw", raw)

	for i, c := range p.Controls {
		for j, arm := range [][]common.Vec2{{c.P0, c.P1}, {c.P3, c.P2}} {
			l, err := plotter.NewLine(xys(arm))
			if err != nil {
				return nil, fmt.Errorf("control arm %d: %w", i, err)
			}
			l.Color = colorControl
			l.Width = vg.Points(0.75)
			pl.Add(l)
			if i == 0 && j == 0 {
				pl.Legend.Add("control arms", l)
			}
		}
	}

	dense, err := plotter.NewLine(xys(closed(p.Points)))
	if err != nil {
		return nil, fmt.Errorf("dense path: %w", err)
	}
	dense.Color = colorDense
	dense.Width = vg.Points(1.5)
	pl.Add(dense)
	pl.Legend.Add("smoothed path", dense)

	var cps []common.Vec2
	for i, c := range p.Checkpoints {
		if c {
			cps = append(cps, p.Points[i])
		}
	}
	if len(cps) > 0 {
		sc, err := plotter.NewScatter(xys(cps))
		if err != nil {
			return nil, fmt.Errorf("checkpoints: %w", err)
		}
		sc.GlyphStyle.Color = colorCheckpoint
		sc.GlyphStyle.Radius = vg.Points(3)
		pl.Add(sc)
		pl.Legend.Add("checkpoints", sc)
	}
	configureLegend(pl)
	return pl, nil
}

// turnPlot draws the relative angle at every dense index.
func turnPlot(p *path.Path, title string) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "Dense index"
	pl.Y.Label.Text = "Relative angle (rad)"
	pl.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(p.Relative))
	var cps plotter.XYs
	for i, a := range p.Relative {
		pts[i] = plotter.XY{X: float64(i), Y: a}
		if p.Checkpoints[i] {
			cps = append(cps, pts[i])
		}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("relative angles: %w", err)
	}
	line.Color = colorTurn
	line.Width = vg.Points(1)
	pl.Add(line)
	pl.Legend.Add("relative angle", line)

	if len(cps) > 0 {
		sc, err := plotter.NewScatter(cps)
		if err != nil {
			return nil, fmt.Errorf("checkpoints: %w", err)
		}
		sc.GlyphStyle.Color = colorCheckpoint
		sc.GlyphStyle.Radius = vg.Points(2)
		pl.Add(sc)
		pl.Legend.Add("checkpoints", sc)
	}
	configureLegend(pl)
	return pl, nil
}

// render writes <name>_path.png and <name>_turns.png into dir and returns their paths.
func render(p *path.Path, name, dir string) ([]string, error) {
	s := p.Summarize()
	geo, err := geometryPlot(p, fmt.Sprintf("%s: %d raw, %d dense points", name, s.RawPoints, s.DensePoints))
	if err != nil {
		return nil, err
	}
	turns, err := turnPlot(p, fmt.Sprintf("%s: mean %.4f, stddev %.4f, max |%.4f|", name, s.MeanTurn, s.StdDevTurn, s.MaxAbsTurn))
	if err != nil {
		return nil, err
	}

	geoFile := filepath.Join(dir, name+"_path.png")
	if err := geo.Save(10*vg.Inch, 10*vg.Inch, geoFile); err != nil {
		return nil, fmt.Errorf("save %s: %w", geoFile, err)
	}
	turnFile := filepath.Join(dir, name+"_turns.png")
	if err := turns.Save(14*vg.Inch, 5*vg.Inch, turnFile); err != nil {
		return nil, fmt.Errorf("save %s: %w", turnFile, err)
	}
	return []string{geoFile, turnFile}, nil
}

func main() {
	trackPath := flag.String("track", "", "Track file (.json, .png, .jpg); empty uses -shape")
	shape := flag.String("shape", "kidney", "Built-in track shape when -track is empty")
	window := flag.Int("window", path.DefaultSmoothWindow, "Smoothing window")
	outDir := flag.String("out", "debug", "Output directory")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log, err := logging.NewDevelopment(*level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var trk *track.Track
	if *trackPath != "" {
		trk, err = track.Load(*trackPath)
	} else {
		trk, err = track.Shape(*shape)
	}
	if err != nil {
		log.Fatal("failed to load track", zap.Error(err))
	}

	p, err := path.New(trk.Lines, *window)
	if err != nil {
		log.Fatal("failed to build path", zap.Error(err))
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal("failed to create output directory", zap.Error(err))
	}
	files, err := render(p, trk.Name, *outDir)
	if err != nil {
		log.Fatal("failed to render path", zap.Error(err))
	}
	log.Info("path plots written", zap.Strings("files", files), zap.Int("dense_points", p.Len()))
}
