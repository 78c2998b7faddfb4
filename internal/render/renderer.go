// Package render draws the simulation state onto a Surface.
package render

import (
	"image/color"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/jennahenricsson-umain/motion-MBD/internal/sim"
)

// Options controls colors and overlays.
type Options struct {
	// BackgroundAlpha is the opacity of the per-frame fade rectangle. Lower
	// values leave longer trails.
	BackgroundAlpha uint8

	Palette       []color.NRGBA
	ParticleColor color.NRGBA
	HaloScale     float64
	HaloAlpha     float64

	NearColor    color.NRGBA
	FarColor     color.NRGBA
	DepthNear    float64
	DepthFar     float64
	OutlineWidth float64

	ShowLandmarkDots bool
	DotRadius        float64

	Title       string
	Subtitle    string
	LoadingText string
}

// DefaultOptions returns the installation look.
func DefaultOptions() Options {
	return Options{
		BackgroundAlpha:  25,
		Palette:          DefaultPalette,
		ParticleColor:    color.NRGBA{R: 0xff, G: 0xd6, B: 0x8a, A: 0xff},
		HaloScale:        2.2,
		HaloAlpha:        0.3,
		NearColor:        color.NRGBA{R: 139, G: 92, B: 246, A: 0xff},
		FarColor:         color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		DepthNear:        -60,
		DepthFar:         40,
		OutlineWidth:     3,
		DotRadius:        2.5,
		Title:            "UMAIN JIN",
		Subtitle:         "We recognize you",
		LoadingText:      "Loading model",
	}
}

const (
	titleSize    = 36
	subtitleSize = 18
	loadingSize  = 28

	pulseLow      = 0.3
	pulseHigh     = 1.0
	pulseDuration = 0.9
)

// Renderer paints sim.State. It holds no simulation state of its own.
type Renderer struct {
	opts  Options
	pulse *pulse
}

// NewRenderer creates a Renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		opts:  opts,
		pulse: newPulse(pulseLow, pulseHigh, pulseDuration),
	}
}

// Options returns the current options.
func (r *Renderer) Options() Options {
	return r.opts
}

// SetOptions replaces the options.
func (r *Renderer) SetOptions(opts Options) {
	r.opts = opts
}

// ToggleLandmarkDots flips the raw landmark overlay and returns the new value.
func (r *Renderer) ToggleLandmarkDots() bool {
	r.opts.ShowLandmarkDots = !r.opts.ShowLandmarkDots
	return r.opts.ShowLandmarkDots
}

// Tick advances overlay animations by dt seconds.
func (r *Renderer) Tick(dt float64) {
	r.pulse.Update(float32(dt))
}

// Draw paints one frame. When ready is false the faces are replaced by the
// loading message.
func (r *Renderer) Draw(dst Surface, s *sim.State, ready bool) {
	w, h := dst.Size()
	fw, fh := float64(w), float64(h)

	dst.FillRect(0, 0, fw, fh, color.NRGBA{A: r.opts.BackgroundAlpha})

	for _, p := range s.Projectiles() {
		dst.FillCircle(p.X, p.Y, p.Radius, PaletteColor(r.opts.Palette, p.ColorIndex))
	}

	for _, p := range s.Particles() {
		frac := p.Alpha / sim.MaxAlpha
		size := p.Size * frac
		dst.FillCircle(p.X, p.Y, size*r.opts.HaloScale, WithAlpha(r.opts.ParticleColor, frac*r.opts.HaloAlpha))
		dst.FillCircle(p.X, p.Y, size, WithAlpha(r.opts.ParticleColor, frac))
	}

	if ready {
		r.drawOutlines(dst, s)
		if r.opts.ShowLandmarkDots {
			r.drawDots(dst, s)
		}
	}

	if r.opts.Title != "" {
		dst.Text(r.opts.Title, fw/2, 24, titleSize, color.White)
	}
	if r.opts.Subtitle != "" {
		dst.Text(r.opts.Subtitle, fw/2, 24+titleSize+8, subtitleSize, WithAlpha(r.opts.FarColor, 0.8))
	}

	if !ready {
		dst.Text(r.opts.LoadingText, fw/2, fh/2-loadingSize/2, loadingSize, WithAlpha(r.opts.FarColor, float64(r.pulse.Value())))
	}
}

func (r *Renderer) drawOutlines(dst Surface, s *sim.State) {
	faces := s.Faces()
	for i, outline := range s.Outlines() {
		if len(outline) < 2 {
			continue
		}
		c := r.opts.FarColor
		if i < len(faces) {
			c = DepthColor(faces[i].AverageDepth(), r.opts.DepthNear, r.opts.DepthFar, r.opts.NearColor, r.opts.FarColor)
		}
		prev := outline[len(outline)-1]
		for _, pt := range outline {
			dst.StrokeLine(prev.X, prev.Y, pt.X, pt.Y, r.opts.OutlineWidth, c)
			prev = pt
		}
	}
}

func (r *Renderer) drawDots(dst Surface, s *sim.State) {
	fit := s.Fit()
	for _, f := range s.Faces() {
		for _, pt := range f.Points {
			x, y := fit.Apply(pt)
			dst.FillCircle(x, y, r.opts.DotRadius, color.White)
		}
	}
}

// pulse ping-pongs a value between two bounds.
type pulse struct {
	tween    *gween.Tween
	from, to float32
	duration float32
	value    float32
}

func newPulse(from, to, duration float32) *pulse {
	return &pulse{
		tween:    gween.New(from, to, duration, ease.InOutSine),
		from:     from,
		to:       to,
		duration: duration,
		value:    from,
	}
}

func (p *pulse) Update(dt float32) {
	v, finished := p.tween.Update(dt)
	p.value = v
	if finished {
		p.from, p.to = p.to, p.from
		p.tween = gween.New(p.from, p.to, p.duration, ease.InOutSine)
	}
}

func (p *pulse) Value() float32 {
	return p.value
}
