package render

import (
	"image/color"
	"math"
)

// DefaultPalette is the set of projectile colors.
var DefaultPalette = []color.NRGBA{
	{R: 0x8b, G: 0x5c, B: 0xf6, A: 0xff}, // violet
	{R: 0x22, G: 0xd3, B: 0xee, A: 0xff}, // cyan
	{R: 0xf4, G: 0x72, B: 0xb6, A: 0xff}, // pink
	{R: 0xfa, G: 0xcc, B: 0x15, A: 0xff}, // yellow
	{R: 0x4a, G: 0xde, B: 0x80, A: 0xff}, // green
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp interpolates between a and b channel by channel. t is clamped to
// [0, 1].
func Lerp(a, b color.NRGBA, t float64) color.NRGBA {
	t = Clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// DepthT remaps a depth value from [near, far] to [0, 1], clamping values
// outside the range. A degenerate range maps everything to 0.
func DepthT(z, near, far float64) float64 {
	if far == near {
		return 0
	}
	return Clamp01((z - near) / (far - near))
}

// DepthColor returns the outline color for a face at average depth z.
func DepthColor(z, near, far float64, nearColor, farColor color.NRGBA) color.NRGBA {
	return Lerp(nearColor, farColor, DepthT(z, near, far))
}

// PaletteColor returns palette entry i, wrapping around the palette length.
// An empty palette yields opaque white.
func PaletteColor(palette []color.NRGBA, i int) color.NRGBA {
	if len(palette) == 0 {
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	i %= len(palette)
	if i < 0 {
		i += len(palette)
	}
	return palette[i]
}

// WithAlpha scales the alpha channel of c by a in [0, 1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * Clamp01(a)))
	return c
}

// ParseHex parses "#rrggbb" or "#rrggbbaa".
func ParseHex(s string) (color.NRGBA, bool) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, false
	}
	var v [4]uint8
	v[3] = 0xff
	for i := 0; i < len(s)/2; i++ {
		hi, ok1 := hexDigit(s[2*i])
		lo, ok2 := hexDigit(s[2*i+1])
		if !ok1 || !ok2 {
			return color.NRGBA{}, false
		}
		v[i] = hi<<4 | lo
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, true
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
