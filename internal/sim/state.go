package sim

import (
	"math/rand/v2"
	"time"

	"github.com/jennahenricsson-umain/motion-MBD/internal/landmark"
)

// State is the complete animation state of the installation. It is owned
// by the render loop and must not be shared across goroutines.
type State struct {
	cfg Config

	viewport    *Viewport
	smoother    *Smoother
	projectiles *Simulator
	explosions  *Emitter

	faces    []landmark.Face
	hitboxes []Hitbox
	width    int
	height   int
	frame    uint64
}

// NewState creates an empty State. rng seeds spawn positions, radii,
// colors and particle spread; pass a fixed seed for reproducible runs.
func NewState(cfg Config, rng *rand.Rand) *State {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &State{
		cfg:         cfg,
		viewport:    NewViewport(landmark.SourceWidth, landmark.SourceHeight),
		smoother:    NewSmoother(cfg.SmoothingFactor),
		projectiles: NewSimulator(cfg, rng),
		explosions:  NewEmitter(cfg, rng),
	}
}

// Config returns the current tuning.
func (s *State) Config() Config {
	return s.cfg
}

// Apply replaces the tuning of every component. Live objects are kept.
func (s *State) Apply(cfg Config) {
	s.cfg = cfg
	s.smoother.SetFactor(cfg.SmoothingFactor)
	s.projectiles.SetConfig(cfg)
	s.explosions.SetConfig(cfg)
}

// SetFaces replaces the faces the next Step smooths toward. The slice is
// retained until the next call.
func (s *State) SetFaces(faces []landmark.Face) {
	s.faces = faces
}

// SetPaused stops or resumes projectile spawning.
func (s *State) SetPaused(paused bool) {
	s.projectiles.SetPaused(paused)
}

// Paused reports whether projectile spawning is paused.
func (s *State) Paused() bool {
	return s.projectiles.Paused()
}

// Step advances the animation one frame on a width×height display:
// fit, smooth, estimate hitboxes, move projectiles, move particles.
func (s *State) Step(now time.Time, width, height int) {
	s.width, s.height = width, height
	s.frame++

	fit := s.viewport.Fit(width, height)
	s.smoother.Update(s.faces, fit)

	s.hitboxes = s.hitboxes[:0]
	for _, slot := range s.smoother.Slots() {
		if h, ok := EstimateHitbox(slot, s.cfg.HitboxShrink); ok {
			s.hitboxes = append(s.hitboxes, h)
		}
	}

	s.projectiles.Update(now, float64(width), float64(height), s.hitboxes, s.explosions.Trigger)
	s.explosions.Update()
}

// Reset clears projectiles, particles and smoothed landmarks. The tuning
// and the latest faces are kept.
func (s *State) Reset() {
	s.smoother.Reset()
	s.projectiles.Reset()
	s.explosions.Reset()
	s.hitboxes = s.hitboxes[:0]
}

// Faces returns the raw faces of the latest accepted detection.
func (s *State) Faces() []landmark.Face {
	return s.faces
}

// Outlines returns the smoothed face outlines in display space.
func (s *State) Outlines() [][]Vec2 {
	return s.smoother.Slots()
}

// Hitboxes returns the head hitboxes of the last Step.
func (s *State) Hitboxes() []Hitbox {
	return s.hitboxes
}

// Projectiles returns the live projectiles.
func (s *State) Projectiles() []Projectile {
	return s.projectiles.Projectiles()
}

// Particles returns the live explosion particles.
func (s *State) Particles() []Particle {
	return s.explosions.Particles()
}

// Fit returns the transform used by the last Step.
func (s *State) Fit() FitRect {
	return s.viewport.Rect()
}

// Size returns the display size of the last Step.
func (s *State) Size() (width, height int) {
	return s.width, s.height
}

// Snapshot is a copy of the observable state, safe to hand to other
// goroutines.
type Snapshot struct {
	Frame       uint64   `json:"frame"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Faces       int      `json:"faces"`
	Hitboxes    []Hitbox `json:"hitboxes"`
	Projectiles int      `json:"projectiles"`
	Particles   int      `json:"particles"`
	Explosions  int      `json:"explosions"`
	Paused      bool     `json:"paused"`
}

// Snapshot copies the observable state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Frame:       s.frame,
		Width:       s.width,
		Height:      s.height,
		Faces:       len(s.faces),
		Hitboxes:    append([]Hitbox{}, s.hitboxes...),
		Projectiles: len(s.projectiles.Projectiles()),
		Particles:   len(s.explosions.Particles()),
		Explosions:  s.explosions.Bursts(),
		Paused:      s.projectiles.Paused(),
	}
}
