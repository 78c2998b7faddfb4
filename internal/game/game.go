// Package game runs the installation inside the ebiten game loop: it
// takes faces from the detection feed, steps the simulation and draws it.
package game

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"github.com/jennahenricsson-umain/motion-MBD/internal/feed"
	"github.com/jennahenricsson-umain/motion-MBD/internal/render"
	"github.com/jennahenricsson-umain/motion-MBD/internal/sim"
)

// ReadySource reports whether the detection pipeline is running.
type ReadySource interface {
	Ready() bool
}

// Config wires a Game.
type Config struct {
	State    *sim.State
	Renderer *render.Renderer
	Receiver *feed.Receiver
	Pipeline ReadySource
	ShowFPS  bool
	Log      logrus.FieldLogger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Game implements ebiten.Game.
type Game struct {
	state    *sim.State
	renderer *render.Renderer
	receiver *feed.Receiver
	pipeline ReadySource
	canvas   *render.Canvas
	log      logrus.FieldLogger
	now      func() time.Time

	width, height int
	ready         bool
	showFPS       bool
	lastTick      time.Time

	tuning   chan sim.Config
	snapshot atomic.Pointer[sim.Snapshot]
}

// New creates a Game.
func New(cfg Config) (*Game, error) {
	canvas, err := render.NewCanvas()
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}

	log := cfg.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cfg.State.Apply(cfg.State.Config().WithPalette(len(cfg.Renderer.Options().Palette)))

	return &Game{
		state:    cfg.State,
		renderer: cfg.Renderer,
		receiver: cfg.Receiver,
		pipeline: cfg.Pipeline,
		canvas:   canvas,
		log:      log.WithField("component", "game"),
		now:      now,
		showFPS:  cfg.ShowFPS,
		tuning:   make(chan sim.Config, 1),
	}, nil
}

// ApplyTuning queues a tuning for the next Update. It is safe to call from
// any goroutine; a newer tuning replaces one not yet applied.
func (g *Game) ApplyTuning(cfg sim.Config) {
	for {
		select {
		case g.tuning <- cfg:
			return
		default:
		}
		select {
		case <-g.tuning:
		default:
		}
	}
}

// Snapshot returns the state published by the latest Update.
func (g *Game) Snapshot() (sim.Snapshot, bool) {
	s := g.snapshot.Load()
	if s == nil {
		return sim.Snapshot{}, false
	}
	return *s, true
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	for key, a := range keyBindings {
		if inpututil.IsKeyJustPressed(key) {
			if err := g.perform(a); err != nil {
				return err
			}
		}
	}
	g.tick(g.now())
	return nil
}

// tick advances one frame at now.
func (g *Game) tick(now time.Time) {
	select {
	case cfg := <-g.tuning:
		g.state.Apply(cfg.WithPalette(len(g.renderer.Options().Palette)))
		g.log.Info("tuning applied")
	default:
	}

	if faces, ok := g.receiver.Poll(now); ok {
		g.state.SetFaces(faces)
	}

	if !g.lastTick.IsZero() {
		g.renderer.Tick(now.Sub(g.lastTick).Seconds())
	}
	g.lastTick = now

	g.ready = g.pipeline == nil || g.pipeline.Ready()
	if g.ready && g.width > 0 && g.height > 0 {
		g.state.Step(now, g.width, g.height)
	}

	snap := g.state.Snapshot()
	g.snapshot.Store(&snap)
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(g.canvas.Target(screen), g.state, g.ready)

	if g.showFPS {
		snap, _ := g.Snapshot()
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"TPS %.0f  FPS %.0f\nfaces %d  balls %d  particles %d",
			ebiten.ActualTPS(), ebiten.ActualFPS(), snap.Faces, snap.Projectiles, snap.Particles,
		))
	}
}

// Layout implements ebiten.Game. The simulation runs at window resolution.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
