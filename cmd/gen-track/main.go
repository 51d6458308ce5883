package main

import (
	"flag"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"racing-line-follower/internal/logging"
	"racing-line-follower/internal/track"
)

func main() {
	shape := flag.String("shape", "kidney", "Track shape: "+strings.Join(track.ShapeNames(), ", "))
	out := flag.String("out", "assets/track.json", "Output JSON polyline")
	pngOut := flag.String("png", "", "Also write a raster of the track to this PNG (optional)")
	width := flag.Float64("width", 0, "Override the track half-width (0 keeps the shape's)")
	margin := flag.Float64("margin", 20, "Gravel margin around the tarmac in the raster")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log, err := logging.NewDevelopment(*level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	trk, err := track.Shape(*shape)
	if err != nil {
		log.Fatal("unknown shape", zap.Error(err))
	}
	if *width > 0 {
		trk.Width = *width
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatal("failed to create output directory", zap.Error(err))
	}
	if err := track.SaveJSON(*out, trk); err != nil {
		log.Fatal("failed to write track", zap.Error(err))
	}
	log.Info("track written",
		zap.String("shape", *shape),
		zap.String("path", *out),
		zap.Int("vertices", len(trk.Lines)),
		zap.Float64("length", trk.Length()),
		zap.Float64("width", trk.Width),
	)

	if *pngOut == "" {
		return
	}
	grid := track.Rasterize(trk, *margin)
	f, err := os.Create(*pngOut)
	if err != nil {
		log.Fatal("failed to create raster", zap.Error(err))
	}
	defer f.Close()
	if err := png.Encode(f, grid.Image()); err != nil {
		log.Fatal("failed to encode raster", zap.Error(err))
	}
	log.Info("raster written", zap.String("path", *pngOut), zap.Int("width", grid.Width), zap.Int("height", grid.Height))
}
