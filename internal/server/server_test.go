package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jennahenricsson-umain/motion-MBD/internal/app"
	"github.com/jennahenricsson-umain/motion-MBD/internal/sim"
)

type fakeStatus struct {
	ready bool
	err   error
	stats app.Stats
}

func (f fakeStatus) Ready() bool      { return f.ready }
func (f fakeStatus) Err() error       { return f.err }
func (f fakeStatus) Stats() app.Stats { return f.stats }

type fakePreview struct {
	mu       sync.Mutex
	watchers int
	frame    []byte
	seq      uint64
}

func (f *fakePreview) WatchPreview() func() {
	f.mu.Lock()
	f.watchers++
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.watchers--
		f.mu.Unlock()
	}
}

func (f *fakePreview) Preview() ([]byte, uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame, f.seq, f.frame != nil
}

func (f *fakePreview) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watchers
}

type fakeScene struct {
	mu   sync.Mutex
	snap sim.Snapshot
}

func (f *fakeScene) Snapshot() (sim.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.snap.Frame > 0
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_Status(t *testing.T) {
	tests := []struct {
		name      string
		status    fakeStatus
		wantReady bool
		wantError string
	}{
		{
			name:      "ready",
			status:    fakeStatus{ready: true, stats: app.Stats{Frames: 12, Detections: 10}},
			wantReady: true,
		},
		{
			name:      "failed",
			status:    fakeStatus{err: errors.New("camera missing")},
			wantError: "camera missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{Status: tt.status})
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

			var got statusResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Ready != tt.wantReady || got.Error != tt.wantError {
				t.Errorf("status = %+v", got)
			}
			if got.Stats != tt.status.stats {
				t.Errorf("stats = %+v, want %+v", got.Stats, tt.status.stats)
			}
		})
	}
}

func TestServer_StatusIncludesScene(t *testing.T) {
	scene := &fakeScene{snap: sim.Snapshot{Frame: 3, Faces: 2, Projectiles: 5, Explosions: 1, Width: 800, Height: 600}}
	s := New(Config{Status: fakeStatus{ready: true}, Scene: scene})
	defer s.Shutdown(t.Context())

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var got statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Scene == nil || got.Scene.Faces != 2 || got.Scene.Explosions != 1 || got.Scene.Width != 800 {
		t.Errorf("scene = %+v", got.Scene)
	}
}

func TestServer_RoutesNeedDependencies(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/status", "/api/presets", "/api/stream", "/api/scene", "/api/nonexistent", "/"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestServer_StaticFiles(t *testing.T) {
	tmpDir := t.TempDir()
	testContent := "<html><body>Dashboard</body></html>"
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(testContent), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != testContent {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.css", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_Stream(t *testing.T) {
	preview := &fakePreview{frame: []byte("jpeg-bytes"), seq: 1}
	ts := httptest.NewServer(New(Config{Preview: preview}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/stream")
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %q", ct)
	}

	part, err := multipart.NewReader(resp.Body, "frame").NextPart()
	if err != nil {
		t.Fatalf("NextPart() error = %v", err)
	}
	if ct := part.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("part Content-Type = %q", ct)
	}
	body, err := io.ReadAll(io.LimitReader(part, int64(len("jpeg-bytes"))))
	if err != nil || string(body) != "jpeg-bytes" {
		t.Errorf("part body = %q, %v", body, err)
	}
	if preview.Watchers() != 1 {
		t.Errorf("watchers while streaming = %d, want 1", preview.Watchers())
	}

	resp.Body.Close()
	deadline := time.Now().Add(2 * time.Second)
	for preview.Watchers() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if preview.Watchers() != 0 {
		t.Error("stream did not release the preview after the client left")
	}
}

func TestServer_Scene(t *testing.T) {
	scene := &fakeScene{snap: sim.Snapshot{
		Frame:    7,
		Width:    1280,
		Height:   720,
		Faces:    1,
		Hitboxes: []sim.Hitbox{{X: 640, Y: 300, R: 90}},
	}}
	srv := New(Config{Scene: scene, SceneHz: 50})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Shutdown(t.Context())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/scene"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var msg sceneMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "scene" || msg.Scene.Frame != 7 || msg.Scene.Faces != 1 {
		t.Errorf("message = %+v", msg)
	}
	if len(msg.Scene.Hitboxes) != 1 || msg.Scene.Hitboxes[0].R != 90 {
		t.Errorf("hitboxes = %+v", msg.Scene.Hitboxes)
	}
}

func TestServer_ShutdownWithoutListen(t *testing.T) {
	s := New(Config{Scene: &fakeScene{}})
	if err := s.Shutdown(t.Context()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
