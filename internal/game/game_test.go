package game

import (
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/jennahenricsson-umain/motion-MBD/internal/feed"
	"github.com/jennahenricsson-umain/motion-MBD/internal/landmark"
	"github.com/jennahenricsson-umain/motion-MBD/internal/render"
	"github.com/jennahenricsson-umain/motion-MBD/internal/sim"
)

type readyFlag struct{ atomic.Bool }

func (r *readyFlag) Ready() bool { return r.Load() }

func square(cx, cy, half float64) landmark.Face {
	return landmark.Face{Points: []landmark.Point{
		{X: cx - half, Y: cy - half},
		{X: cx + half, Y: cy - half},
		{X: cx + half, Y: cy + half},
		{X: cx - half, Y: cy + half},
	}}
}

func newTestGame(t *testing.T, ready bool) (*Game, *feed.Mailbox, *readyFlag) {
	t.Helper()
	mailbox := feed.NewMailbox()
	flag := &readyFlag{}
	flag.Store(ready)

	g, err := New(Config{
		State:    sim.NewState(sim.DefaultConfig(), rand.New(rand.NewPCG(1, 2))),
		Renderer: render.NewRenderer(render.DefaultOptions()),
		Receiver: feed.NewReceiver(mailbox, 50*time.Millisecond),
		Pipeline: flag,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w, h := g.Layout(640, 480); w != 640 || h != 480 {
		t.Fatalf("Layout() = %d×%d, want the window size", w, h)
	}
	return g, mailbox, flag
}

func TestGame_TickStepsWhenReady(t *testing.T) {
	g, mailbox, _ := newTestGame(t, true)
	now := time.Unix(1000, 0)

	mailbox.Post(feed.Update{Faces: []landmark.Face{square(320, 240, 60)}, At: now})
	g.tick(now)

	snap, ok := g.Snapshot()
	if !ok {
		t.Fatal("Snapshot() should be published after a tick")
	}
	if snap.Frame != 1 || snap.Faces != 1 {
		t.Errorf("snapshot = %+v, want frame 1 with one face", snap)
	}
	if len(snap.Hitboxes) != 1 {
		t.Errorf("hitboxes = %d, want 1", len(snap.Hitboxes))
	}
	if snap.Width != 640 || snap.Height != 480 {
		t.Errorf("snapshot size = %d×%d", snap.Width, snap.Height)
	}
}

func TestGame_TickWaitsForPipeline(t *testing.T) {
	g, mailbox, flag := newTestGame(t, false)
	now := time.Unix(1000, 0)

	mailbox.Post(feed.Update{Faces: []landmark.Face{square(320, 240, 60)}, At: now})
	g.tick(now)

	snap, _ := g.Snapshot()
	if snap.Frame != 0 {
		t.Errorf("frame = %d, simulation should not step before the pipeline is ready", snap.Frame)
	}
	if g.ready {
		t.Error("game reports ready before the pipeline")
	}

	flag.Store(true)
	g.tick(now.Add(16 * time.Millisecond))
	if snap, _ := g.Snapshot(); snap.Frame != 1 || snap.Faces != 1 {
		t.Errorf("after ready snapshot = %+v", snap)
	}
}

func TestGame_TickWithoutLayout(t *testing.T) {
	g, _, _ := newTestGame(t, true)
	g.width, g.height = 0, 0

	g.tick(time.Unix(1000, 0))
	if snap, _ := g.Snapshot(); snap.Frame != 0 {
		t.Errorf("frame = %d, a zero-sized window should not step", snap.Frame)
	}
}

func TestGame_ApplyTuningLatestWins(t *testing.T) {
	g, _, _ := newTestGame(t, true)

	slow := sim.DefaultConfig()
	slow.Gravity = 0.1
	fast := sim.DefaultConfig()
	fast.Gravity = 2

	g.ApplyTuning(slow)
	g.ApplyTuning(fast)
	if got := g.state.Config().Gravity; got != sim.DefaultConfig().Gravity {
		t.Fatalf("tuning applied before tick: gravity %v", got)
	}

	g.tick(time.Unix(1000, 0))
	if got := g.state.Config().Gravity; got != 2 {
		t.Errorf("gravity = %v, want the latest tuning", got)
	}
}

func TestGame_PaletteSizeFollowsRenderer(t *testing.T) {
	opts := render.DefaultOptions()
	opts.Palette = opts.Palette[:3]
	tuning := sim.DefaultConfig()
	tuning.PaletteSize = 8

	g, err := New(Config{
		State:    sim.NewState(tuning, rand.New(rand.NewPCG(1, 2))),
		Renderer: render.NewRenderer(opts),
		Receiver: feed.NewReceiver(feed.NewMailbox(), 50*time.Millisecond),
		Pipeline: &readyFlag{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := g.state.Config().PaletteSize; got != 3 {
		t.Fatalf("PaletteSize after New = %d, want 3", got)
	}

	preset := sim.DefaultConfig()
	preset.PaletteSize = 9
	g.ApplyTuning(preset)
	g.tick(time.Unix(1000, 0))
	if got := g.state.Config().PaletteSize; got != 3 {
		t.Errorf("PaletteSize after ApplyTuning = %d, want 3", got)
	}
}

func TestGame_SnapshotBeforeTick(t *testing.T) {
	g, _, _ := newTestGame(t, true)
	if _, ok := g.Snapshot(); ok {
		t.Error("Snapshot() before the first tick should report false")
	}
}

func TestGame_Perform(t *testing.T) {
	g, _, _ := newTestGame(t, true)

	if err := g.perform(actionQuit); !errors.Is(err, ebiten.Termination) {
		t.Errorf("quit error = %v, want ebiten.Termination", err)
	}

	if err := g.perform(actionPause); err != nil || !g.state.Paused() {
		t.Errorf("pause: err %v, paused %v", err, g.state.Paused())
	}
	g.perform(actionPause)
	if g.state.Paused() {
		t.Error("second pause should resume")
	}

	dots := g.renderer.Options().ShowLandmarkDots
	g.perform(actionToggleDots)
	if g.renderer.Options().ShowLandmarkDots == dots {
		t.Error("dots not toggled")
	}

	g.perform(actionToggleFPS)
	if !g.showFPS {
		t.Error("FPS overlay not toggled")
	}

	if err := g.perform(actionReset); err != nil {
		t.Errorf("reset error = %v", err)
	}
}

func TestKeyBindings(t *testing.T) {
	for _, key := range []ebiten.Key{ebiten.KeyEscape, ebiten.KeyQ} {
		if keyBindings[key] != actionQuit {
			t.Errorf("%v should quit", key)
		}
	}
	if keyBindings[ebiten.KeySpace] != actionPause {
		t.Error("space should pause")
	}
}
