// Package landmark defines the face landmark types shared by the detectors
// and the simulation.
package landmark

// Source video resolution. Detectors report points in this pixel space.
const (
	SourceWidth  = 640
	SourceHeight = 480
)

// FaceOval lists the MediaPipe FaceMesh indices that outline the face
// boundary, in drawing order.
// See: https://github.com/google/mediapipe/blob/master/mediapipe/python/solutions/face_mesh_connections.py
var FaceOval = [...]int{
	10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288,
	397, 365, 379, 378, 400, 377, 152, 148, 176, 149, 150, 136,
	172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109,
}

// MeshSize is the point count of a FaceMesh result without iris refinement.
const MeshSize = 468

// Point is a landmark in source-video pixel space. Z is relative depth,
// smaller values are closer to the camera. It is zero when the model does
// not report depth.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Face is an ordered set of points forming a closed boundary curve.
type Face struct {
	Points []Point `json:"points"`
}

// AverageDepth returns the mean Z of the face points, or 0 for an empty face.
func (f Face) AverageDepth() float64 {
	if len(f.Points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range f.Points {
		sum += p.Z
	}
	return sum / float64(len(f.Points))
}

// Oval reduces a full FaceMesh result to its boundary points. Faces that
// are already shorter than a full mesh are returned unchanged.
func (f Face) Oval() Face {
	if len(f.Points) < MeshSize {
		return f
	}
	oval := Face{Points: make([]Point, len(FaceOval))}
	for i, idx := range FaceOval {
		oval.Points[i] = f.Points[idx]
	}
	return oval
}

// Clone returns a deep copy of the faces so that producers can reuse buffers.
func Clone(faces []Face) []Face {
	if faces == nil {
		return nil
	}
	out := make([]Face, len(faces))
	for i, f := range faces {
		out[i] = Face{Points: append([]Point(nil), f.Points...)}
	}
	return out
}
