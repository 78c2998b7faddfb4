package render

import "image/color"

// Surface is the drawing target the Renderer paints onto.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	FillRect(x, y, w, h float64, c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)
	StrokeLine(x0, y0, x1, y1, width float64, c color.Color)

	// Text draws s horizontally centered on x with its top edge at y.
	Text(s string, x, y, size float64, c color.Color)
}
