package sim

import "math"

// Hitbox is the circular collision region of a head.
type Hitbox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// EstimateHitbox derives a hitbox from a face outline: the centroid of the
// points and the largest centroid distance scaled by shrink. It reports
// false for an empty outline.
func EstimateHitbox(points []Vec2, shrink float64) (Hitbox, bool) {
	if len(points) == 0 {
		return Hitbox{}, false
	}

	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(points))
	cx /= n
	cy /= n

	var maxDist float64
	for _, p := range points {
		if d := math.Hypot(p.X-cx, p.Y-cy); d > maxDist {
			maxDist = d
		}
	}

	return Hitbox{X: cx, Y: cy, R: maxDist * shrink}, true
}

// Hits reports whether a circle at (x, y) with radius r overlaps the
// hitbox. Touching circles do not overlap.
func (h Hitbox) Hits(x, y, r float64) bool {
	return math.Hypot(x-h.X, y-h.Y) < h.R+r
}
