package app

import (
	"time"

	"github.com/jennahenricsson-umain/motion-MBD/internal/capture"
	"github.com/jennahenricsson-umain/motion-MBD/internal/feed"
)

// runPipeline reads and analyzes one frame per interval until stop closes.
//
// Per frame:
// 1. Read from the camera, mirror if configured
// 2. Encode a preview JPEG while someone watches the stream
// 3. Skip the model when the scene has not changed
// 4. Detect faces and post them to the mailbox
func (a *App) runPipeline(stop <-chan struct{}) {
	ticker := time.NewTicker(a.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			a.processFrame(now)
		}
	}
}

// processFrame runs one pipeline step. Errors are logged and the frame is
// dropped.
func (a *App) processFrame(now time.Time) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.failures.Add(1)
		a.log.WithError(err).Debug("error reading frame")
		return
	}
	defer frame.Close()
	a.frames.Add(1)

	if a.config.Mirror {
		capture.Mirror(frame)
	}

	if a.previewWatchers.Load() > 0 {
		if data, err := capture.EncodeJPEG(frame); err == nil {
			var seq uint64 = 1
			if prev := a.preview.Load(); prev != nil {
				seq = prev.seq + 1
			}
			a.preview.Store(&previewFrame{jpeg: data, seq: seq})
		}
	}

	if a.gate != nil {
		if changed, _ := a.gate.Changed(frame); !changed {
			a.skipped.Add(1)
			return
		}
	}

	a.mu.Lock()
	d := a.detector
	a.mu.Unlock()
	if d == nil {
		return
	}

	faces, err := d.Detect(frame)
	if err != nil {
		a.failures.Add(1)
		a.log.WithError(err).Warn("error detecting faces")
		return
	}

	a.detections.Add(1)
	a.mailbox.Post(feed.Update{Faces: faces, At: now})
}
