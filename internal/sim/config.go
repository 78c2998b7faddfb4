// Package sim holds the per-frame animation state of the installation:
// landmark smoothing, head hitboxes, falling projectiles and explosion
// particles. Nothing in this package draws or blocks; a frame is advanced
// by calling State.Step from the render loop.
package sim

import "time"

// Config holds the tuning values of the simulation. Distances are in
// display pixels and rates are per frame unless stated otherwise.
type Config struct {
	// SmoothingFactor is the fraction of the remaining distance a smoothed
	// landmark moves toward its target each frame.
	SmoothingFactor float64 `yaml:"smoothing_factor" json:"smoothing_factor" validate:"gt=0,lt=1"`
	// HitboxShrink scales the bounding radius of a face down to an
	// approximately inscribed circle.
	HitboxShrink float64 `yaml:"hitbox_shrink" json:"hitbox_shrink" validate:"gt=0,lte=1"`

	SpawnIntervalMS int     `yaml:"spawn_interval_ms" json:"spawn_interval_ms" validate:"gt=0"`
	MaxProjectiles  int     `yaml:"max_projectiles" json:"max_projectiles" validate:"gt=0"`
	Gravity         float64 `yaml:"gravity" json:"gravity" validate:"gte=0"`
	MinRadius       float64 `yaml:"min_radius" json:"min_radius" validate:"gt=0"`
	MaxRadius       float64 `yaml:"max_radius" json:"max_radius" validate:"gtefield=MinRadius"`
	// PaletteSize follows the render palette; see WithPalette.
	PaletteSize     int     `yaml:"palette_size" json:"palette_size" validate:"gt=0"`

	ParticleCount int     `yaml:"particle_count" json:"particle_count" validate:"gt=0"`
	AngleJitter   float64 `yaml:"angle_jitter" json:"angle_jitter" validate:"gte=0"`
	MinSpeed      float64 `yaml:"min_speed" json:"min_speed" validate:"gte=0"`
	MaxSpeed      float64 `yaml:"max_speed" json:"max_speed" validate:"gtefield=MinSpeed"`
	MinSize       float64 `yaml:"min_size" json:"min_size" validate:"gt=0"`
	MaxSize       float64 `yaml:"max_size" json:"max_size" validate:"gtefield=MinSize"`
	AlphaDecay    float64 `yaml:"alpha_decay" json:"alpha_decay" validate:"gt=0"`
}

// MaxAlpha is the opacity of a freshly spawned particle.
const MaxAlpha = 255.0

// DefaultConfig returns the tuning used by the installation out of the box.
func DefaultConfig() Config {
	return Config{
		SmoothingFactor: 0.15,
		HitboxShrink:    0.8,
		SpawnIntervalMS: 700,
		MaxProjectiles:  40,
		Gravity:         0.35,
		MinRadius:       12,
		MaxRadius:       28,
		PaletteSize:     5,
		ParticleCount:   18,
		AngleJitter:     0.2,
		MinSpeed:        1.5,
		MaxSpeed:        5,
		MinSize:         3,
		MaxSize:         7,
		AlphaDecay:      8,
	}
}

// SpawnInterval returns the wall-clock time between projectile spawns.
func (c Config) SpawnInterval() time.Duration {
	return time.Duration(c.SpawnIntervalMS) * time.Millisecond
}

// WithPalette returns c with PaletteSize set to the length of the palette
// projectiles are drawn with. A non-positive n leaves c unchanged.
func (c Config) WithPalette(n int) Config {
	if n > 0 {
		c.PaletteSize = n
	}
	return c
}
