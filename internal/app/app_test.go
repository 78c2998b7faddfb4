package app

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/jennahenricsson-umain/motion-MBD/internal/capture"
	"github.com/jennahenricsson-umain/motion-MBD/internal/detector"
	"github.com/jennahenricsson-umain/motion-MBD/internal/feed"
	"github.com/jennahenricsson-umain/motion-MBD/internal/landmark"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testFrames(t *testing.T) []*gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return []*gocv.Mat{&frame}
}

func newTestApp(t *testing.T, det *detector.MockDetector) (*App, *capture.MockCamera) {
	t.Helper()
	cam := capture.NewMockCamera(testFrames(t), true)
	a := New(Config{
		Camera:      cam,
		NewDetector: func() (detector.Detector, error) { return det, nil },
		Interval:    5 * time.Millisecond,
		Log:         quietLogger(),
	})
	return a, cam
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestApp_StartPostsDetections(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetFaces([]landmark.Face{detector.CenteredFace()})
	a, _ := newTestApp(t, det)

	if a.Ready() {
		t.Fatal("Ready() = true before Start()")
	}

	a.Start()
	defer a.Stop()

	waitFor(t, "ready", a.Ready)

	var u feed.Update
	waitFor(t, "a detection", func() bool {
		var ok bool
		u, ok = a.Mailbox().Drain()
		return ok
	})
	if len(u.Faces) != 1 {
		t.Errorf("posted %d faces, want 1", len(u.Faces))
	}
	if u.At.IsZero() {
		t.Error("posted update has no timestamp")
	}
}

func TestApp_CameraFailureLeavesNotReady(t *testing.T) {
	det := detector.NewMockDetector()
	a, cam := newTestApp(t, det)
	cam.SetOpenError(errors.New("no device"))

	a.Start()
	defer a.Stop()

	waitFor(t, "init error", func() bool { return a.Err() != nil })
	if a.Ready() {
		t.Error("Ready() = true after camera failure")
	}
	if det.Calls() != 0 {
		t.Errorf("detector ran %d times without a camera", det.Calls())
	}
}

func TestApp_DetectorFailureLeavesNotReady(t *testing.T) {
	want := errors.New("model missing")
	cam := capture.NewMockCamera(testFrames(t), true)
	a := New(Config{
		Camera:      cam,
		NewDetector: func() (detector.Detector, error) { return nil, want },
		Log:         quietLogger(),
	})

	a.Start()
	defer a.Stop()

	waitFor(t, "init error", func() bool { return a.Err() != nil })
	if !errors.Is(a.Err(), want) {
		t.Errorf("Err() = %v, want %v", a.Err(), want)
	}
	if a.Ready() {
		t.Error("Ready() = true after detector failure")
	}
}

func TestApp_NoCamera(t *testing.T) {
	a := New(Config{Log: quietLogger()})
	a.Start()
	defer a.Stop()

	waitFor(t, "init error", func() bool { return a.Err() != nil })
	if !errors.Is(a.Err(), ErrNoCamera) {
		t.Errorf("Err() = %v, want ErrNoCamera", a.Err())
	}
}

func TestApp_StopReleasesResources(t *testing.T) {
	det := detector.NewMockDetector()
	a, cam := newTestApp(t, det)

	a.Start()
	waitFor(t, "ready", a.Ready)
	a.Stop()

	if a.Ready() {
		t.Error("Ready() = true after Stop()")
	}
	if cam.IsOpen() {
		t.Error("camera still open after Stop()")
	}

	// Stop is idempotent.
	a.Stop()
}

func TestApp_ProcessFrame(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetFaces([]landmark.Face{detector.CenteredFace(), detector.CenteredFace()})
	a, cam := newTestApp(t, det)
	cam.Open()
	a.detector = det

	now := time.Unix(10, 0)
	a.processFrame(now)

	u, ok := a.Mailbox().Drain()
	if !ok || len(u.Faces) != 2 || !u.At.Equal(now) {
		t.Fatalf("Drain() = %+v, %v; want 2 faces at %v", u, ok, now)
	}
	if s := a.Stats(); s.Frames != 1 || s.Detections != 1 || s.Errors != 0 {
		t.Errorf("Stats() = %+v", s)
	}

	det.SetError(errors.New("inference failed"))
	a.processFrame(now)
	if _, ok := a.Mailbox().Drain(); ok {
		t.Error("a failed detection should not post")
	}
	if s := a.Stats(); s.Errors != 1 {
		t.Errorf("Stats().Errors = %d, want 1", s.Errors)
	}
}

func TestApp_ReadErrorSkipsFrame(t *testing.T) {
	det := detector.NewMockDetector()
	a, _ := newTestApp(t, det)

	// Camera never opened.
	a.detector = det
	a.processFrame(time.Now())

	if det.Calls() != 0 {
		t.Error("detector ran without a frame")
	}
	if s := a.Stats(); s.Frames != 0 || s.Errors != 1 {
		t.Errorf("Stats() = %+v, want one error and no frames", s)
	}
}

func TestApp_ChangeGateSkipsStillFrames(t *testing.T) {
	det := detector.NewMockDetector()
	cam := capture.NewMockCamera(testFrames(t), true)
	a := New(Config{
		Camera:          cam,
		NewDetector:     func() (detector.Detector, error) { return det, nil },
		ChangeThreshold: 1,
		MaxSkip:         2,
		Log:             quietLogger(),
	})
	cam.Open()
	a.detector = det
	defer a.gate.Close()

	for i := 0; i < 4; i++ {
		a.processFrame(time.Now())
	}

	// First frame analyzed, two skipped, then forced re-analysis.
	if det.Calls() != 2 {
		t.Errorf("detector ran %d times, want 2", det.Calls())
	}
	if s := a.Stats(); s.Skipped != 2 {
		t.Errorf("Stats().Skipped = %d, want 2", s.Skipped)
	}
}

func TestApp_PreviewOnlyWhileWatched(t *testing.T) {
	det := detector.NewMockDetector()
	a, cam := newTestApp(t, det)
	cam.Open()
	a.detector = det

	a.processFrame(time.Now())
	if _, _, ok := a.Preview(); ok {
		t.Fatal("preview encoded without watchers")
	}

	release := a.WatchPreview()
	a.processFrame(time.Now())
	a.processFrame(time.Now())
	data, seq, ok := a.Preview()
	if !ok || len(data) == 0 || seq != 2 {
		t.Errorf("Preview() = %d bytes, seq %d, %v; want two encoded frames", len(data), seq, ok)
	}

	release()
	release()
	if n := a.previewWatchers.Load(); n != 0 {
		t.Errorf("watchers = %d after release, want 0", n)
	}
}
