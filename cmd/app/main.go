package main

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"racing-line-follower/internal/agent"
	"racing-line-follower/internal/common"
	"racing-line-follower/internal/config"
	"racing-line-follower/internal/control"
	"racing-line-follower/internal/logging"
	"racing-line-follower/internal/physics"
	"racing-line-follower/internal/telemetry"
	"racing-line-follower/internal/track"
)

// ============================================================================
// CONFIGURATION - Adjust these values to customize the simulation
// ============================================================================

// Render window dimensions
const (
	WindowWidth  = 1200
	WindowHeight = 800
)

// Simulation settings
const (
	FastForwardMultiplier = 10   // Ticks per frame in fast mode
	CarSpawnWaypointIndex = 5    // Dense path index the car spawns at
	ViewScaleMargin       = 0.95 // Margin for fitting track in window (0.95 = 5% padding)
	GravelMargin          = 20   // Gravel band painted around rasterised tracks
)

// Track surface colors
var (
	ColorTarmac = color.RGBA{80, 80, 80, 255}
	ColorGravel = color.RGBA{20, 60, 20, 255}
	ColorWall   = color.RGBA{10, 10, 10, 255}
	ColorStart  = color.RGBA{255, 0, 0, 255}
)

// Visualization colors
var (
	ColorCar        = agent.BotColor
	ColorCarHeading = color.RGBA{255, 255, 0, 255}   // Yellow
	ColorSteer      = color.RGBA{255, 200, 100, 255} // Steering target
	ColorLookahead  = color.RGBA{100, 200, 255, 255} // End of the curvature window
	ColorWaypoint   = color.RGBA{255, 100, 200, 255} // Clearance ring around next waypoint
	ColorHistory    = color.RGBA{255, 255, 0, 200}
	ColorBestLap    = color.RGBA{50, 255, 50, 150}
)

// ============================================================================

type Game struct {
	Track      *track.Track
	Grid       *track.Grid
	TrackImage *ebiten.Image
	Car        *physics.Car
	Bot        *agent.Bot
	PathColors []color.RGBA
	FastMode   bool
	ShowPath   bool
	Log        *zap.Logger

	dt float64

	// Analytics
	PreviousLaps   int
	LapTicks       int
	LastLapTicks   int
	BestLapTicks   int
	BestLapPath    []common.Vec2
	CurrentLapPath []common.Vec2
	Crashes        int

	// Rendering Scale
	ViewScale   float32
	ViewOffsetX float32
	ViewOffsetY float32
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.FastMode = !g.FastMode
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.ShowPath = !g.ShowPath
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.respawn()
	}

	ticks := 1
	if g.FastMode {
		ticks = FastForwardMultiplier
	}
	for i := 0; i < ticks; i++ {
		g.step()
	}
	return nil
}

func (g *Game) spawnPose() common.Transform {
	p := g.Bot.Path()
	idx := CarSpawnWaypointIndex
	if idx >= p.Len() {
		idx = 0
	}
	return common.Pose(p.Points[idx], p.Segments[idx].Angle)
}

func (g *Game) respawn() {
	pose := g.spawnPose()
	g.Car = physics.NewCar(pose.P.X, pose.P.Y, pose.Heading)
	g.Bot.Seed(pose.P)
	g.CurrentLapPath = nil
	g.LapTicks = 0
}

func (g *Game) step() {
	if g.Car.Crashed {
		g.Crashes++
		g.Log.Warn("car crashed, respawning", zap.Int("crashes", g.Crashes), zap.Float64("x", g.Car.Position.X), zap.Float64("y", g.Car.Position.Y))
		g.respawn()
		return
	}

	throttle, steer := g.Bot.ComputeCommands(0, g.Car.Pose(), g.Car.Velocity)
	g.Car.Update(g.Grid, throttle, steer, g.dt)

	g.LapTicks++
	if g.LapTicks%5 == 0 {
		g.CurrentLapPath = append(g.CurrentLapPath, g.Car.Position)
	}

	if laps := g.Bot.State().Laps; laps > g.PreviousLaps {
		g.LastLapTicks = g.LapTicks
		if g.BestLapTicks == 0 || g.LastLapTicks < g.BestLapTicks {
			g.BestLapTicks = g.LastLapTicks
			g.BestLapPath = append([]common.Vec2(nil), g.CurrentLapPath...)
		}
		g.CurrentLapPath = nil
		g.LapTicks = 0
		g.PreviousLaps = laps
	}
}

func (g *Game) toScreen(p common.Vec2) (float32, float32) {
	return float32(p.X)*g.ViewScale + g.ViewOffsetX, float32(p.Y)*g.ViewScale + g.ViewOffsetY
}

func (g *Game) strokePolyline(screen *ebiten.Image, pts []common.Vec2, width float32, col color.Color) {
	for j := 0; j+1 < len(pts); j++ {
		x1, y1 := g.toScreen(pts[j])
		x2, y2 := g.toScreen(pts[j+1])
		vector.StrokeLine(screen, x1, y1, x2, y2, width, col, true)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.TrackImage != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(g.ViewScale), float64(g.ViewScale))
		op.GeoM.Translate(float64(g.ViewOffsetX), float64(g.ViewOffsetY))
		screen.DrawImage(g.TrackImage, op)
	}

	p := g.Bot.Path()
	if g.ShowPath {
		for i, pt := range p.Points {
			x, y := g.toScreen(pt)
			vector.FillCircle(screen, x, y, 2, g.PathColors[i], true)
		}
		for i, c := range p.Checkpoints {
			if c {
				x, y := g.toScreen(p.Points[i])
				vector.StrokeCircle(screen, x, y, 5, 1, ColorStart, true)
			}
		}
	}

	g.strokePolyline(screen, g.BestLapPath, 3, ColorBestLap)
	g.strokePolyline(screen, g.Bot.History(), 2, ColorHistory)

	st := g.Bot.State()
	last := g.Bot.Last()
	scale := g.ViewScale

	wx, wy := g.toScreen(p.At(st.NextWaypoint))
	vector.StrokeCircle(screen, wx, wy, float32(g.Track.Width)*scale, 1, ColorWaypoint, true)
	sx, sy := g.toScreen(last.Target)
	vector.StrokeCircle(screen, sx, sy, 10*scale, 3, ColorSteer, true)
	lx, ly := g.toScreen(p.At(st.NextWaypoint + st.Lookahead))
	vector.StrokeCircle(screen, lx, ly, 10*scale, 3, ColorLookahead, true)

	g.drawCar(screen)
	g.drawHUD(screen, last)
}

func (g *Game) drawCar(screen *ebiten.Image) {
	pose := g.Car.Pose()
	halfW, halfL := g.Car.Width/2, g.Car.Length/2
	corners := [4]common.Vec2{
		{X: halfL, Y: halfW},
		{X: halfL, Y: -halfW},
		{X: -halfL, Y: -halfW},
		{X: -halfL, Y: halfW},
	}

	var path vector.Path
	for i, c := range corners {
		x, y := g.toScreen(pose.Apply(c))
		if i == 0 {
			path.MoveTo(x, y)
		} else {
			path.LineTo(x, y)
		}
	}
	path.Close()

	var cs ebiten.ColorScale
	cs.ScaleWithColor(ColorCar)
	vector.FillPath(screen, &path, nil, &vector.DrawPathOptions{
		AntiAlias:  true,
		ColorScale: cs,
	})

	hx, hy := g.toScreen(pose.P)
	tx, ty := g.toScreen(pose.Apply(common.V(halfL+5, 0)))
	vector.StrokeLine(screen, hx, hy, tx, ty, 2, ColorCarHeading, true)
}

func (g *Game) drawHUD(screen *ebiten.Image, last control.Result) {
	vector.FillRect(screen, 0, 0, 190, 250, color.RGBA{0, 0, 0, 180}, true)

	seconds := func(ticks int) float64 { return float64(ticks) * g.dt }
	st := g.Bot.State()

	var b strings.Builder
	fmt.Fprintf(&b, "%s by %s\n", g.Bot.Name(), g.Bot.Contributor())
	b.WriteString("----------------\n")
	fmt.Fprintf(&b, "Speed:    %.1f\n", last.Velocity)
	fmt.Fprintf(&b, "Target:   %.1f\n", last.TargetVelocity)
	fmt.Fprintf(&b, "Throttle: %+.2f\n", last.Throttle)
	fmt.Fprintf(&b, "Steer:    %+.2f\n", last.Steer)
	fmt.Fprintf(&b, "Brake:    %.1f\n", last.BreakReduction)
	fmt.Fprintf(&b, "Waypoint: %d/%d\n", st.NextWaypoint, g.Bot.Path().Len())
	fmt.Fprintf(&b, "Laps:     %d\n", st.Laps)
	fmt.Fprintf(&b, "Current:  %.2fs\n", seconds(g.LapTicks))
	fmt.Fprintf(&b, "Last:     %.2fs\n", seconds(g.LastLapTicks))
	fmt.Fprintf(&b, "Best:     %.2fs\n", seconds(g.BestLapTicks))
	fmt.Fprintf(&b, "Crashes:  %d\n", g.Crashes)
	if g.Car.OnGravel {
		b.WriteString("[GRAVEL]\n")
	}
	if g.FastMode {
		b.WriteString("[Fast forward]\n")
	}
	b.WriteString("S = speed, P = path, R = respawn")

	ebitenutil.DebugPrint(screen, b.String())
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return WindowWidth, WindowHeight
}

func RenderGrid(g *track.Grid) *ebiten.Image {
	img := ebiten.NewImage(g.Width, g.Height)
	pixels := make([]byte, g.Width*g.Height*4)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			var c color.RGBA
			switch g.Get(x, y).Type {
			case track.CellTarmac:
				c = ColorTarmac
			case track.CellGravel:
				c = ColorGravel
			case track.CellStart:
				c = ColorStart
			default:
				c = ColorWall
			}
			idx := (y*g.Width + x) * 4
			pixels[idx] = c.R
			pixels[idx+1] = c.G
			pixels[idx+2] = c.B
			pixels[idx+3] = 255
		}
	}
	img.WritePixels(pixels)
	return img
}

func loadTrack(trackPath string) (*track.Track, *track.Grid, error) {
	if trackPath == "" {
		trk, err := track.Shape("kidney")
		if err != nil {
			return nil, nil, err
		}
		return trk, track.Rasterize(trk, GravelMargin), nil
	}
	switch strings.ToLower(filepath.Ext(trackPath)) {
	case ".png", ".jpg", ".jpeg":
		return track.LoadImage(trackPath)
	}
	trk, err := track.Load(trackPath)
	if err != nil {
		return nil, nil, err
	}
	return trk, track.Rasterize(trk, GravelMargin), nil
}

func main() {
	configPath := flag.String("config", "", "Run configuration (.json, optional)")
	trackFlag := flag.String("track", "", "Track file, overrides the configuration")
	flag.Parse()

	cfg := config.Empty()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			panic(err)
		}
	} else {
		cfg.ApplyEnv()
		if err := cfg.Validate(); err != nil {
			panic(err)
		}
	}

	log, err := logging.NewDevelopment(cfg.GetLogLevel())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	trackPath := cfg.GetTrack()
	if *trackFlag != "" {
		trackPath = *trackFlag
	}
	trk, grid, err := loadTrack(trackPath)
	if err != nil {
		log.Fatal("failed to load track", zap.String("track", trackPath), zap.Error(err))
	}

	var sink telemetry.Sink = telemetry.Nop{}
	if cfg.GetTelemetryEnabled() {
		udp, err := telemetry.NewUDPSink(cfg.GetTelemetryAddr(), log)
		if err != nil {
			log.Fatal("failed to start telemetry", zap.Error(err))
		}
		defer udp.Close()
		sink = udp
	}

	bot, err := agent.New(trk, agent.Config{
		Tuning:       cfg.Tuning(),
		SmoothWindow: cfg.GetSmoothWindow(),
		Clearance:    cfg.GetClearance(),
		Sink:         sink,
		Logger:       log,
	})
	if err != nil {
		log.Fatal("failed to build bot", zap.Error(err))
	}

	ebiten.SetWindowSize(WindowWidth, WindowHeight)
	ebiten.SetWindowTitle("Racing Line Follower - " + trk.Name)
	ebiten.SetTPS(cfg.GetTickRate())

	// Fit the grid into the window and center it
	winW, winH := float64(WindowWidth), float64(WindowHeight)
	viewScale := float32(math.Min(winW/float64(grid.Width), winH/float64(grid.Height)))
	viewScale *= ViewScaleMargin
	viewOffsetX := (float32(winW) - float32(grid.Width)*viewScale) / 2
	viewOffsetY := (float32(winH) - float32(grid.Height)*viewScale) / 2

	game := &Game{
		Track:       trk,
		Grid:        grid,
		TrackImage:  RenderGrid(grid),
		Bot:         bot,
		PathColors:  agent.TurnColors(bot.Path().Relative),
		ShowPath:    true,
		Log:         log,
		dt:          1 / float64(cfg.GetTickRate()),
		ViewScale:   viewScale,
		ViewOffsetX: viewOffsetX,
		ViewOffsetY: viewOffsetY,
	}
	game.respawn()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal("game loop failed", zap.Error(err))
	}
}
