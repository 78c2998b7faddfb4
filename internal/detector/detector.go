// Package detector finds face outlines in camera frames.
package detector

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/jennahenricsson-umain/motion-MBD/internal/landmark"
)

// Detector kinds.
const (
	KindMediaPipe = "mediapipe"
	KindRemote    = "remote"
	KindMock      = "mock"
)

var (
	// ErrServiceNotFound is returned when the landmark service script cannot be located.
	ErrServiceNotFound = errors.New("landmark service not found")
	// ErrNotConnected is returned when the remote landmark service is unreachable.
	ErrNotConnected = errors.New("not connected to landmark service")
)

// Detector defines the interface for face landmark detection.
type Detector interface {
	// Detect analyzes a video frame and returns the outline of every face
	// found, in source pixel space. Returns an empty slice if no faces are
	// detected.
	Detect(frame *gocv.Mat) ([]landmark.Face, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face detection.
type Config struct {
	Kind string `yaml:"kind" json:"kind" validate:"oneof=mediapipe remote mock"`

	// MaxFaces is the maximum number of faces to report.
	MaxFaces int `yaml:"max_faces" json:"max_faces" validate:"gte=1,lte=10"`

	// RefineLandmarks enables iris refinement in the model.
	RefineLandmarks bool `yaml:"refine_landmarks" json:"refine_landmarks"`

	// MirrorHorizontally flips frames before detection so the display
	// behaves like a mirror.
	MirrorHorizontally bool `yaml:"mirror_horizontally" json:"mirror_horizontally"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence" validate:"gte=0,lte=1"`

	ScriptPath string `yaml:"script_path" json:"-"`
	PythonPath string `yaml:"python_path" json:"-"`

	// RemoteURL is the WebSocket endpoint of the remote landmark service.
	RemoteURL string `yaml:"remote_url" json:"remote_url" validate:"omitempty,url"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Kind:               KindMediaPipe,
		MaxFaces:           5,
		RefineLandmarks:    false,
		MirrorHorizontally: true,
		MinConfidence:      0.5,
	}
}

// New builds the detector selected by cfg.Kind.
func New(cfg Config, log logrus.FieldLogger) (Detector, error) {
	switch cfg.Kind {
	case KindMediaPipe, "":
		d, err := NewMediaPipeDetector(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case KindRemote:
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("remote detector: %w: remote_url is empty", ErrNotConnected)
		}
		return NewRemoteDetector(cfg, log), nil
	case KindMock:
		m := NewMockDetector()
		m.SetFaces([]landmark.Face{CenteredFace()})
		return m, nil
	default:
		return nil, fmt.Errorf("unknown detector kind %q", cfg.Kind)
	}
}
