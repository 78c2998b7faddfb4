// Package app runs the landmark source: camera capture and face detection
// on a background goroutine, feeding results to the render loop.
package app

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jennahenricsson-umain/motion-MBD/internal/capture"
	"github.com/jennahenricsson-umain/motion-MBD/internal/detector"
	"github.com/jennahenricsson-umain/motion-MBD/internal/feed"
)

// Pipeline defaults.
const (
	DefaultChangeThreshold = 0.5
	DefaultMaxSkip         = 10
)

// ErrNoCamera is returned by Start when no camera was configured.
var ErrNoCamera = errors.New("no camera configured")

// Config holds configuration options for the application.
type Config struct {
	Camera capture.Camera

	// NewDetector builds the detector during Start. Model loading happens
	// here, so it may be slow or fail.
	NewDetector func() (detector.Detector, error)

	Mailbox *feed.Mailbox

	// Interval between detections.
	Interval time.Duration

	// Mirror flips frames before detection and preview.
	Mirror bool

	// ChangeThreshold is the percentage of changed pixels below which a
	// frame is not re-analyzed. 0 analyzes every frame.
	ChangeThreshold float64
	MaxSkip         int

	Log logrus.FieldLogger
}

// starter is implemented by detectors that can load their model ahead of
// the first frame.
type starter interface {
	Start() error
}

// Stats counts pipeline activity since Start.
type Stats struct {
	Frames     int64 `json:"frames"`
	Detections int64 `json:"detections"`
	Skipped    int64 `json:"skipped"`
	Errors     int64 `json:"errors"`
}

// App owns the camera and detector and runs the detection pipeline.
type App struct {
	config  Config
	camera  capture.Camera
	gate    *capture.ChangeGate
	mailbox *feed.Mailbox
	log     logrus.FieldLogger

	mu       sync.Mutex
	detector detector.Detector
	stopCh   chan struct{}
	done     chan struct{}
	initErr  error

	ready atomic.Bool

	previewWatchers atomic.Int32
	preview         atomic.Pointer[previewFrame]

	frames     atomic.Int64
	detections atomic.Int64
	skipped    atomic.Int64
	failures   atomic.Int64
}

type previewFrame struct {
	jpeg []byte
	seq  uint64
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.Interval <= 0 {
		config.Interval = feed.DefaultInterval
	}
	if config.Mailbox == nil {
		config.Mailbox = feed.NewMailbox()
	}
	if config.Log == nil {
		config.Log = logrus.StandardLogger()
	}

	a := &App{
		config:  config,
		camera:  config.Camera,
		mailbox: config.Mailbox,
		log:     config.Log.WithField("component", "app"),
	}
	if config.ChangeThreshold > 0 {
		a.gate = capture.NewChangeGate(config.ChangeThreshold, config.MaxSkip)
	}
	return a
}

// Mailbox returns the mailbox detections are posted to.
func (a *App) Mailbox() *feed.Mailbox {
	return a.mailbox
}

// Ready reports whether the camera and model are initialized.
func (a *App) Ready() bool {
	return a.ready.Load()
}

// Err returns the initialization error, if initialization failed.
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initErr
}

// Start initializes the camera and detector on a background goroutine and
// then runs the pipeline. It returns immediately. A failed initialization
// is logged and leaves Ready false; it is not retried.
func (a *App) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)
}

func (a *App) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	if err := a.initialize(); err != nil {
		a.mu.Lock()
		a.initErr = err
		a.mu.Unlock()
		a.log.WithError(err).Error("landmark source failed to initialize")
		return
	}

	select {
	case <-stop:
		return
	default:
	}

	a.ready.Store(true)
	a.log.Info("landmark source ready")

	a.runPipeline(stop)
}

func (a *App) initialize() error {
	if a.camera == nil {
		return ErrNoCamera
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	if a.config.NewDetector == nil {
		return errors.New("no detector configured")
	}
	d, err := a.config.NewDetector()
	if err != nil {
		return fmt.Errorf("create detector: %w", err)
	}
	if s, ok := d.(starter); ok {
		if err := s.Start(); err != nil {
			d.Close()
			return fmt.Errorf("start detector: %w", err)
		}
	}

	a.mu.Lock()
	a.detector = d
	a.mu.Unlock()
	return nil
}

// Stop halts the pipeline and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	a.ready.Store(false)

	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("error closing camera")
	}

	if a.gate != nil {
		a.gate.Close()
	}

	a.mu.Lock()
	d := a.detector
	a.detector = nil
	a.mu.Unlock()
	if d != nil {
		if err := d.Close(); err != nil {
			a.log.WithError(err).Warn("error closing detector")
		}
	}

	a.log.Info("landmark source stopped")
}

// Stats returns pipeline counters.
func (a *App) Stats() Stats {
	return Stats{
		Frames:     a.frames.Load(),
		Detections: a.detections.Load(),
		Skipped:    a.skipped.Load(),
		Errors:     a.failures.Load(),
	}
}

// WatchPreview asks the pipeline to encode preview frames until the
// returned function is called.
func (a *App) WatchPreview() (release func()) {
	a.previewWatchers.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { a.previewWatchers.Add(-1) })
	}
}

// Preview returns the latest preview JPEG and its sequence number.
func (a *App) Preview() ([]byte, uint64, bool) {
	p := a.preview.Load()
	if p == nil {
		return nil, 0, false
	}
	return p.jpeg, p.seq, true
}
