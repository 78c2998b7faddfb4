package detector

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/jennahenricsson-umain/motion-MBD/internal/landmark"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// response is the JSON line a landmark service answers each frame with.
// Coordinates are normalized to [0, 1]; z shares the scale of x.
type response struct {
	Faces []jsonFace `json:"faces"`
	Error string     `json:"error,omitempty"`
}

type jsonFace struct {
	Points []jsonPoint `json:"points"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// decodeFaces parses a service response into faces in source pixel space,
// keeping at most maxFaces. Full meshes are reduced to the face oval.
func decodeFaces(data []byte, maxFaces int) ([]landmark.Face, error) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("landmark service: %s", resp.Error)
	}

	n := len(resp.Faces)
	if maxFaces > 0 && n > maxFaces {
		n = maxFaces
	}

	faces := make([]landmark.Face, 0, n)
	for _, jf := range resp.Faces[:n] {
		if len(jf.Points) == 0 {
			continue
		}
		faces = append(faces, jf.toFace().Oval())
	}
	return faces, nil
}

func (f jsonFace) toFace() landmark.Face {
	pts := make([]landmark.Point, len(f.Points))
	for i, p := range f.Points {
		pts[i] = landmark.Point{
			X: p.X * landmark.SourceWidth,
			Y: p.Y * landmark.SourceHeight,
			Z: p.Z * landmark.SourceWidth,
		}
	}
	return landmark.Face{Points: pts}
}
