package sim

import "github.com/jennahenricsson-umain/motion-MBD/internal/landmark"

// FitRect maps source-video coordinates onto the display.
type FitRect struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	DrawW   float64 `json:"draw_w"`
	DrawH   float64 `json:"draw_h"`
	Scale   float64 `json:"scale"`
}

// Apply maps a source point into display space.
func (r FitRect) Apply(p landmark.Point) (x, y float64) {
	return r.OffsetX + p.X*r.Scale, r.OffsetY + p.Y*r.Scale
}

// Cover computes the aspect-fill transform of a source of size srcW×srcH
// onto a display of size displayW×displayH. The source is scaled until it
// covers the display and centered, so it may overflow on one axis.
func Cover(displayW, displayH, srcW, srcH float64) FitRect {
	if displayW <= 0 || displayH <= 0 || srcW <= 0 || srcH <= 0 {
		return FitRect{}
	}
	scale := max(displayW/srcW, displayH/srcH)
	drawW := srcW * scale
	drawH := srcH * scale
	return FitRect{
		OffsetX: (displayW - drawW) / 2,
		OffsetY: (displayH - drawH) / 2,
		DrawW:   drawW,
		DrawH:   drawH,
		Scale:   scale,
	}
}

// Viewport caches the cover transform for the current display size.
type Viewport struct {
	srcW, srcH float64
	w, h       int
	rect       FitRect
	valid      bool
	computes   int
}

// NewViewport creates a Viewport for a fixed source resolution.
func NewViewport(srcW, srcH float64) *Viewport {
	return &Viewport{srcW: srcW, srcH: srcH}
}

// Fit returns the transform for a display of w×h, recomputing it only when
// the size differs from the previous call.
func (v *Viewport) Fit(w, h int) FitRect {
	if v.valid && w == v.w && h == v.h {
		return v.rect
	}
	v.w, v.h = w, h
	v.rect = Cover(float64(w), float64(h), v.srcW, v.srcH)
	v.valid = true
	v.computes++
	return v.rect
}

// Rect returns the last computed transform.
func (v *Viewport) Rect() FitRect {
	return v.rect
}

// Invalidate forces the next Fit call to recompute.
func (v *Viewport) Invalidate() {
	v.valid = false
}

// Computes reports how many times the transform has been recomputed.
func (v *Viewport) Computes() int {
	return v.computes
}
