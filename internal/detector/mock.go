package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"

	"github.com/jennahenricsson-umain/motion-MBD/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	faces []landmark.Face
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFaces sets the faces that will be returned by Detect.
func (m *MockDetector) SetFaces(faces []landmark.Face) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces = faces
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns a copy of the pre-configured faces or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]landmark.Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return landmark.Clone(m.faces), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// CenteredFace returns a face oval in the middle of the source frame, about
// the size of a head at arm's length.
func CenteredFace() landmark.Face {
	return OvalFace(landmark.SourceWidth/2, landmark.SourceHeight/2, 80, 105, -20)
}

// OvalFace returns an elliptical outline with len(landmark.FaceOval) points
// centered on (cx, cy), all at depth z.
func OvalFace(cx, cy, rx, ry, z float64) landmark.Face {
	n := len(landmark.FaceOval)
	pts := make([]landmark.Point, n)
	for i := range pts {
		// Start at the forehead and go clockwise like the mesh oval.
		a := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		pts[i] = landmark.Point{
			X: cx + rx*math.Cos(a),
			Y: cy + ry*math.Sin(a),
			Z: z,
		}
	}
	return landmark.Face{Points: pts}
}
