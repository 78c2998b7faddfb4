package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Change detection works on a downscaled grayscale copy of each frame.
const (
	gateWidth     = 160
	gateHeight    = 120
	gateBlurSize  = 7
	gateThreshold = 25
)

// ChangeGate decides whether a frame differs enough from the last analyzed
// frame to be worth running the landmark model on. A still scene is
// re-analyzed at least every maxSkip frames so the result never goes stale
// indefinitely.
type ChangeGate struct {
	threshold float64
	maxSkip   int

	mu       sync.Mutex
	prevGray gocv.Mat
	hasPrev  bool
	skipped  int
}

// NewChangeGate creates a gate. threshold is the percentage of changed
// pixels that counts as motion; a threshold of 0 or less lets every frame
// through.
func NewChangeGate(threshold float64, maxSkip int) *ChangeGate {
	return &ChangeGate{
		threshold: threshold,
		maxSkip:   maxSkip,
		prevGray:  gocv.NewMat(),
	}
}

// Changed reports whether frame should be analyzed, along with the
// percentage of pixels that changed since the last analyzed frame.
func (g *ChangeGate) Changed(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}
	if g.threshold <= 0 {
		return true, 100
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(*frame, &small, image.Pt(gateWidth, gateHeight), 0, 0, gocv.InterpolationArea)

	gray := gocv.NewMat()
	defer gray.Close()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Pt(gateBlurSize, gateBlurSize), 0, 0, gocv.BorderDefault)

	if !g.hasPrev {
		gray.CopyTo(&g.prevGray)
		g.hasPrev = true
		g.skipped = 0
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, g.prevGray, &diff)
	gocv.Threshold(diff, &diff, gateThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100

	if changed < g.threshold && g.skipped < g.maxSkip {
		g.skipped++
		return false, changed
	}

	gray.CopyTo(&g.prevGray)
	g.skipped = 0
	return true, changed
}

// Reset forgets the reference frame so the next frame is always analyzed.
func (g *ChangeGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hasPrev = false
	g.skipped = 0
}

// Close releases the reference frame.
func (g *ChangeGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.hasPrev = false
}
