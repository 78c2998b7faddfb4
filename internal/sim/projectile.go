package sim

import (
	"math/rand/v2"
	"time"
)

// Projectile is a falling ball.
type Projectile struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	VY         float64 `json:"vy"`
	Radius     float64 `json:"radius"`
	ColorIndex int     `json:"color_index"`
}

// Top returns the y coordinate of the top edge of the ball.
func (p Projectile) Top() float64 {
	return p.Y - p.Radius
}

// Simulator spawns projectiles on a timer, applies gravity and removes
// them when they leave the screen or hit a head.
type Simulator struct {
	cfg         Config
	rng         *rand.Rand
	projectiles []Projectile
	lastSpawn   time.Time
	paused      bool
	hits        int
}

// NewSimulator creates a Simulator drawing randomness from rng.
func NewSimulator(cfg Config, rng *rand.Rand) *Simulator {
	return &Simulator{cfg: cfg, rng: rng}
}

// SetConfig replaces the tuning. Live projectiles keep their radius.
func (s *Simulator) SetConfig(cfg Config) {
	s.cfg = cfg
}

// SetPaused stops or resumes spawning. Live projectiles keep falling.
func (s *Simulator) SetPaused(paused bool) {
	s.paused = paused
}

// Paused reports whether spawning is paused.
func (s *Simulator) Paused() bool {
	return s.paused
}

// Projectiles returns the live projectiles. The slice is owned by the
// Simulator and is only valid until the next Update.
func (s *Simulator) Projectiles() []Projectile {
	return s.projectiles
}

// Hits returns the number of collisions since creation or the last Reset.
func (s *Simulator) Hits() int {
	return s.hits
}

// Reset removes all projectiles and restarts the spawn timer.
func (s *Simulator) Reset() {
	s.projectiles = s.projectiles[:0]
	s.lastSpawn = time.Time{}
	s.hits = 0
}

// Update advances all projectiles one frame within a width×height viewport.
// onHit is called with the projectile center for every collision.
func (s *Simulator) Update(now time.Time, width, height float64, hitboxes []Hitbox, onHit func(x, y float64)) {
	s.spawn(now, width)

	live := s.projectiles[:0]
	for _, p := range s.projectiles {
		p.VY += s.cfg.Gravity
		p.Y += p.VY

		if p.Top() > height {
			continue
		}

		if s.collide(p, hitboxes) {
			s.hits++
			if onHit != nil {
				onHit(p.X, p.Y)
			}
			continue
		}

		live = append(live, p)
	}
	s.projectiles = live
}

// collide reports whether p overlaps any hitbox. The first hit wins.
func (s *Simulator) collide(p Projectile, hitboxes []Hitbox) bool {
	for _, h := range hitboxes {
		if h.Hits(p.X, p.Y, p.Radius) {
			return true
		}
	}
	return false
}

func (s *Simulator) spawn(now time.Time, width float64) {
	if s.lastSpawn.IsZero() {
		s.lastSpawn = now
		return
	}
	interval := s.cfg.SpawnInterval()
	if now.Sub(s.lastSpawn) < interval {
		return
	}
	// Keep a fixed cadence; after a stall of more than one interval
	// restart from now instead of spawning a backlog.
	s.lastSpawn = s.lastSpawn.Add(interval)
	if now.Sub(s.lastSpawn) >= interval {
		s.lastSpawn = now
	}

	if s.paused || len(s.projectiles) >= s.cfg.MaxProjectiles {
		return
	}

	r := s.uniform(s.cfg.MinRadius, s.cfg.MaxRadius)
	x := width / 2
	if width > 2*r {
		x = s.uniform(r, width-r)
	}

	color := 0
	if s.cfg.PaletteSize > 0 {
		color = s.rng.IntN(s.cfg.PaletteSize)
	}

	s.projectiles = append(s.projectiles, Projectile{
		X:          x,
		Y:          -r,
		Radius:     r,
		ColorIndex: color,
	})
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
