package sim

import "github.com/jennahenricsson-umain/motion-MBD/internal/landmark"

// Vec2 is a point in display space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Smoother exponentially smooths landmark positions per face slot and
// point index to suppress detector jitter.
type Smoother struct {
	factor float64
	slots  [][]Vec2
}

// NewSmoother creates a Smoother that moves each point the given fraction
// of the way to its target per update.
func NewSmoother(factor float64) *Smoother {
	return &Smoother{factor: factor}
}

// SetFactor changes the interpolation factor. Existing state is kept.
func (s *Smoother) SetFactor(factor float64) {
	s.factor = factor
}

// Update advances the smoothed points one frame toward the fitted
// positions of faces. A point seen for the first time snaps to its target.
// Slots and points that no longer exist in faces are dropped.
func (s *Smoother) Update(faces []landmark.Face, fit FitRect) {
	if len(s.slots) > len(faces) {
		for i := len(faces); i < len(s.slots); i++ {
			s.slots[i] = nil
		}
		s.slots = s.slots[:len(faces)]
	}

	for i, face := range faces {
		if i == len(s.slots) {
			s.slots = append(s.slots, make([]Vec2, 0, len(face.Points)))
		}
		slot := s.slots[i]
		if len(slot) > len(face.Points) {
			slot = slot[:len(face.Points)]
		}

		for j, p := range face.Points {
			tx, ty := fit.Apply(p)
			if j >= len(slot) {
				slot = append(slot, Vec2{X: tx, Y: ty})
				continue
			}
			slot[j].X += (tx - slot[j].X) * s.factor
			slot[j].Y += (ty - slot[j].Y) * s.factor
		}
		s.slots[i] = slot
	}
}

// Slots returns the smoothed points per face slot. The slices are owned by
// the Smoother and are only valid until the next Update.
func (s *Smoother) Slots() [][]Vec2 {
	return s.slots
}

// Reset drops all smoothed state.
func (s *Smoother) Reset() {
	s.slots = nil
}
