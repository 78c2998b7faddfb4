package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestChangeGate_FirstFramePasses(t *testing.T) {
	g := NewChangeGate(1.0, 5)
	defer g.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if ok, _ := g.Changed(&frame); !ok {
		t.Error("the first frame should always be analyzed")
	}
}

func TestChangeGate_StillSceneSkipsUpToLimit(t *testing.T) {
	g := NewChangeGate(1.0, 3)
	defer g.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	g.Changed(&frame)
	for i := 0; i < 3; i++ {
		if ok, pct := g.Changed(&frame); ok {
			t.Fatalf("still frame %d analyzed (changed %f%%)", i, pct)
		}
	}
	if ok, _ := g.Changed(&frame); !ok {
		t.Error("a still scene should be re-analyzed after maxSkip frames")
	}
}

func TestChangeGate_Motion(t *testing.T) {
	g := NewChangeGate(1.0, 100)
	defer g.Close()

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	g.Changed(&black)
	ok, pct := g.Changed(&white)
	if !ok {
		t.Errorf("black to white should pass the gate, changed %f%%", pct)
	}
	if pct < 50 {
		t.Errorf("changed = %f%%, want most pixels", pct)
	}
}

func TestChangeGate_Disabled(t *testing.T) {
	g := NewChangeGate(0, 0)
	defer g.Close()

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	for i := 0; i < 3; i++ {
		if ok, _ := g.Changed(&frame); !ok {
			t.Fatalf("disabled gate blocked frame %d", i)
		}
	}
}

func TestChangeGate_ResetAndEmpty(t *testing.T) {
	g := NewChangeGate(1.0, 10)
	defer g.Close()

	if ok, _ := g.Changed(nil); ok {
		t.Error("a nil frame should not pass")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	g.Changed(&frame)
	g.Reset()

	if ok, _ := g.Changed(&frame); !ok {
		t.Error("the first frame after Reset should be analyzed")
	}
}

func TestChangeGate_CloseTwice(t *testing.T) {
	g := NewChangeGate(1.0, 1)
	g.Close()
	g.Close()
}
