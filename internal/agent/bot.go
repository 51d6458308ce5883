// Package agent exposes the path-following controller through the fixed bot capability
// set a race host drives every tick.
package agent

import (
	"fmt"
	"image/color"

	"go.uber.org/zap"

	"racing-line-follower/internal/common"
	"racing-line-follower/internal/control"
	"racing-line-follower/internal/path"
	"racing-line-follower/internal/telemetry"
	"racing-line-follower/internal/track"
)

// Agent is what a host needs from a bot.
type Agent interface {
	Name() string
	Contributor() string
	Color() color.RGBA
	// ComputeCommands returns throttle and steer, both in [-1, 1].
	ComputeCommands(nextWaypoint int, pose common.Transform, vel common.Vec2) (throttle, steer float64)
}

const (
	BotName        = "BrumBot"
	BotContributor = "Brum"
)

// BotColor is #c302d9.
var BotColor = color.RGBA{R: 0xc3, G: 0x02, B: 0xd9, A: 0xff}

// Config assembles a Bot.
type Config struct {
	Tuning       control.Tuning
	SmoothWindow int
	// Clearance overrides the track width as the waypoint capture radius when positive.
	Clearance float64
	Sink      telemetry.Sink
	Logger    *zap.Logger
}

// DefaultConfig returns the stock tuning with telemetry disabled.
func DefaultConfig() Config {
	return Config{
		Tuning:       control.DefaultTuning(),
		SmoothWindow: path.DefaultSmoothWindow,
	}
}

// Bot follows the smoothed centerline of a track.
type Bot struct {
	track      *track.Track
	path       *path.Path
	controller *control.Controller
	state      *control.State
	last       control.Result
	log        *zap.Logger
}

var _ Agent = (*Bot)(nil)

// New builds the reference path for t once and returns a bot ready to tick.
func New(t *track.Track, cfg Config) (*Bot, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if cfg.SmoothWindow < 0 {
		return nil, fmt.Errorf("smooth window must be non-negative, got %d", cfg.SmoothWindow)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("bot", BotName), zap.String("track", t.Name))

	p, err := path.New(t.Lines, cfg.SmoothWindow)
	if err != nil {
		return nil, fmt.Errorf("build path: %w", err)
	}
	clearance := t.Width
	if cfg.Clearance > 0 {
		clearance = cfg.Clearance
	}
	ctrl, err := control.New(p, clearance, cfg.Tuning, cfg.Sink, log)
	if err != nil {
		return nil, err
	}

	s := p.Summarize()
	log.Info("path built",
		zap.Int("raw_points", s.RawPoints),
		zap.Int("dense_points", s.DensePoints),
		zap.Int("checkpoints", s.Checkpoints),
		zap.Float64("length", s.Length),
		zap.Float64("mean_turn", s.MeanTurn),
		zap.Float64("stddev_turn", s.StdDevTurn),
		zap.Float64("max_abs_turn", s.MaxAbsTurn),
		zap.Float64("clearance", clearance),
	)
	if s.RawPoints < 3 {
		log.Warn("degenerate track, following raw points", zap.Int("raw_points", s.RawPoints))
	}

	return &Bot{
		track:      t,
		path:       p,
		controller: ctrl,
		state:      control.NewState(cfg.Tuning.HistoryLength),
		log:        log,
	}, nil
}

func (b *Bot) Name() string        { return BotName }
func (b *Bot) Contributor() string { return BotContributor }
func (b *Bot) Color() color.RGBA   { return BotColor }

// ComputeCommands runs one control tick. The host's waypoint hint is not used; the bot
// tracks its own progress on the dense path.
func (b *Bot) ComputeCommands(_ int, pose common.Transform, vel common.Vec2) (float64, float64) {
	b.last = b.controller.Tick(b.state, pose, vel)
	return b.last.Throttle, b.last.Steer
}

// Seed points the tracker at the dense point nearest pos. Call it before the first tick
// when the vehicle does not spawn at the start of the track.
func (b *Bot) Seed(pos common.Vec2) {
	b.state.NextWaypoint = b.path.Nearest(pos)
	b.log.Debug("tracker seeded", zap.Int("next_waypoint", b.state.NextWaypoint))
}

// Path returns the read-only reference path.
func (b *Bot) Path() *path.Path { return b.path }

// Track returns the track the bot was built for.
func (b *Bot) Track() *track.Track { return b.track }

// State returns the controller state. Callers must not modify it.
func (b *Bot) State() *control.State { return b.state }

// Last returns the result of the latest tick.
func (b *Bot) Last() control.Result { return b.last }

// History returns the trailing vehicle positions, oldest first.
func (b *Bot) History() []common.Vec2 { return b.state.History() }
