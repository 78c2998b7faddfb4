package sim

import (
	"math"
	"math/rand/v2"
)

// Particle is one fragment of an explosion.
type Particle struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Alpha float64 `json:"alpha"`
	Size  float64 `json:"size"`
}

// Emitter spawns radial bursts of particles and fades them out.
type Emitter struct {
	cfg       Config
	rng       *rand.Rand
	particles []Particle
	bursts    int
}

// NewEmitter creates an Emitter drawing randomness from rng.
func NewEmitter(cfg Config, rng *rand.Rand) *Emitter {
	return &Emitter{cfg: cfg, rng: rng}
}

// SetConfig replaces the tuning. Live particles keep their velocity, size
// and current alpha but fade from there with the new decay.
func (e *Emitter) SetConfig(cfg Config) {
	e.cfg = cfg
}

// Trigger spawns a burst centered on (x, y). Particles are spread evenly
// around the circle with a small random jitter.
func (e *Emitter) Trigger(x, y float64) {
	n := e.cfg.ParticleCount
	for i := 0; i < n; i++ {
		angle := 2*math.Pi*float64(i)/float64(n) + (e.rng.Float64()*2-1)*e.cfg.AngleJitter
		speed := e.cfg.MinSpeed + e.rng.Float64()*(e.cfg.MaxSpeed-e.cfg.MinSpeed)
		e.particles = append(e.particles, Particle{
			X:     x,
			Y:     y,
			VX:    math.Cos(angle) * speed,
			VY:    math.Sin(angle) * speed,
			Alpha: MaxAlpha,
			Size:  e.cfg.MinSize + e.rng.Float64()*(e.cfg.MaxSize-e.cfg.MinSize),
		})
	}
	e.bursts++
}

// Update moves every particle one frame and removes the ones that have
// faded out.
func (e *Emitter) Update() {
	live := e.particles[:0]
	for _, p := range e.particles {
		p.X += p.VX
		p.Y += p.VY
		// With a constant decay a particle lives ceil(MaxAlpha/AlphaDecay)
		// updates. A retune only changes the step, never raises alpha.
		p.Alpha = max(0, p.Alpha-e.cfg.AlphaDecay)
		if p.Alpha <= 0 {
			continue
		}
		live = append(live, p)
	}
	e.particles = live
}

// Particles returns the live particles. The slice is owned by the Emitter
// and is only valid until the next Update or Trigger.
func (e *Emitter) Particles() []Particle {
	return e.particles
}

// Bursts returns the number of explosions triggered since creation or the
// last Reset.
func (e *Emitter) Bursts() int {
	return e.bursts
}

// Reset removes all particles.
func (e *Emitter) Reset() {
	e.particles = e.particles[:0]
	e.bursts = 0
}

// Lifetime returns the number of updates a particle survives with the
// given decay step.
func Lifetime(decay float64) int {
	return int(math.Ceil(MaxAlpha / decay))
}
