package sim

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/jennahenricsson-umain/motion-MBD/internal/landmark"
)

func face(points ...landmark.Point) landmark.Face {
	return landmark.Face{Points: points}
}

func TestSmoother_FirstSeenSnapsToTarget(t *testing.T) {
	s := NewSmoother(0.15)
	fit := Cover(800, 600, landmark.SourceWidth, landmark.SourceHeight)

	s.Update([]landmark.Face{face(landmark.Point{X: 100, Y: 100})}, fit)

	slots := s.Slots()
	if len(slots) != 1 || len(slots[0]) != 1 {
		t.Fatalf("unexpected slot shape: %v", slots)
	}
	if got := slots[0][0]; got.X != 125 || got.Y != 125 {
		t.Errorf("first-seen point = (%f, %f), want (125, 125)", got.X, got.Y)
	}
}

func TestSmoother_ConvergesMonotonically(t *testing.T) {
	for _, factor := range []float64{0.01, 0.15, 0.5, 0.99} {
		s := NewSmoother(factor)
		fit := FitRect{Scale: 1}

		s.Update([]landmark.Face{face(landmark.Point{X: 0, Y: 0})}, fit)

		target := landmark.Point{X: 300, Y: -120}
		prev := math.Inf(1)
		for frame := 0; frame < 40; frame++ {
			s.Update([]landmark.Face{face(target)}, fit)
			p := s.Slots()[0][0]
			d := math.Hypot(target.X-p.X, target.Y-p.Y)
			if d >= prev {
				t.Fatalf("factor %.2f frame %d: distance %f did not decrease from %f", factor, frame, d, prev)
			}
			prev = d
			if d < 1e-6 {
				break
			}
		}
	}
}

func TestSmoother_BlendsByFactor(t *testing.T) {
	s := NewSmoother(0.25)
	fit := FitRect{Scale: 1}

	s.Update([]landmark.Face{face(landmark.Point{X: 0, Y: 0})}, fit)
	s.Update([]landmark.Face{face(landmark.Point{X: 100, Y: 40})}, fit)

	if got := s.Slots()[0][0]; math.Abs(got.X-25) > epsilon || math.Abs(got.Y-10) > epsilon {
		t.Errorf("blended point = (%f, %f), want (25, 10)", got.X, got.Y)
	}
}

func TestSmoother_TruncatesSlots(t *testing.T) {
	s := NewSmoother(0.15)
	fit := FitRect{Scale: 1}

	three := []landmark.Face{
		face(landmark.Point{X: 1}),
		face(landmark.Point{X: 2}),
		face(landmark.Point{X: 3}),
	}
	s.Update(three, fit)
	if len(s.Slots()) != 3 {
		t.Fatalf("len(Slots()) = %d, want 3", len(s.Slots()))
	}

	s.Update(three[:1], fit)
	if len(s.Slots()) != 1 {
		t.Errorf("len(Slots()) = %d, want 1 after face count shrank", len(s.Slots()))
	}

	s.Update(nil, fit)
	if len(s.Slots()) != 0 {
		t.Errorf("len(Slots()) = %d, want 0 with no faces", len(s.Slots()))
	}

	// A slot that reappears starts fresh instead of lagging from a ghost.
	s.Update([]landmark.Face{face(landmark.Point{X: 1}), face(landmark.Point{X: 50})}, fit)
	if got := s.Slots()[1][0].X; got != 50 {
		t.Errorf("reappearing slot X = %f, want 50", got)
	}
}

func TestSmoother_TruncatesPoints(t *testing.T) {
	s := NewSmoother(0.15)
	fit := FitRect{Scale: 1}

	s.Update([]landmark.Face{face(landmark.Point{}, landmark.Point{}, landmark.Point{})}, fit)
	s.Update([]landmark.Face{face(landmark.Point{})}, fit)

	if got := len(s.Slots()[0]); got != 1 {
		t.Errorf("len(slot) = %d, want 1", got)
	}
}

func TestSmoother_SlotsNeverExceedFaceCount(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := NewSmoother(0.15)
	fit := FitRect{Scale: 1.5, OffsetX: 3}

	for frame := 0; frame < 500; frame++ {
		faces := make([]landmark.Face, rng.IntN(6))
		for i := range faces {
			pts := make([]landmark.Point, 1+rng.IntN(36))
			for j := range pts {
				pts[j] = landmark.Point{X: rng.Float64() * 640, Y: rng.Float64() * 480}
			}
			faces[i] = landmark.Face{Points: pts}
		}

		s.Update(faces, fit)

		if len(s.Slots()) > len(faces) {
			t.Fatalf("frame %d: %d slots for %d faces", frame, len(s.Slots()), len(faces))
		}
		for i, slot := range s.Slots() {
			if len(slot) != len(faces[i].Points) {
				t.Fatalf("frame %d slot %d: %d points for %d landmarks", frame, i, len(slot), len(faces[i].Points))
			}
		}
	}
}
