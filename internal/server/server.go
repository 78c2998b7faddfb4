// Package server provides the HTTP control API of the installation.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/jennahenricsson-umain/motion-MBD/internal/app"
	"github.com/jennahenricsson-umain/motion-MBD/internal/server/api"
	"github.com/jennahenricsson-umain/motion-MBD/internal/sim"
	"github.com/jennahenricsson-umain/motion-MBD/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusSource reports the state of the detection pipeline.
type StatusSource interface {
	Ready() bool
	Err() error
	Stats() app.Stats
}

// PreviewSource provides encoded camera frames.
type PreviewSource interface {
	WatchPreview() (release func())
	Preview() (jpeg []byte, seq uint64, ok bool)
}

// SceneSource provides the latest simulation snapshot.
type SceneSource interface {
	Snapshot() (sim.Snapshot, bool)
}

// Config holds the server configuration. Every dependency is optional;
// routes whose dependency is missing are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Status    StatusSource
	Preview   PreviewSource
	Scene     SceneSource
	Tuning    api.TuningSink

	// SceneHz is the scene broadcast rate; zero selects 15.
	SceneHz int

	Log logrus.FieldLogger
}

// Server is the HTTP handler of the control API.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    logrus.FieldLogger
	scene  *SceneHandler

	mu   sync.Mutex
	http *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	log := config.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    log.WithField("component", "server"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Status != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
	}

	if s.config.Store != nil {
		presets := api.NewPresetHandler(s.config.Store, s.config.Tuning, s.log)
		s.mux.Handle("/api/presets", presets)
		s.mux.Handle("/api/presets/", presets)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.Scene != nil {
		hz := s.config.SceneHz
		if hz <= 0 {
			hz = 15
		}
		s.scene = NewSceneHandler(s.config.Scene, time.Second/time.Duration(hz), s.log)
		s.mux.Handle("/api/scene", s.scene)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	})
}

type statusResponse struct {
	Ready bool          `json:"ready"`
	Error string        `json:"error,omitempty"`
	Stats app.Stats     `json:"stats"`
	Scene *sim.Snapshot `json:"scene,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := statusResponse{
		Ready: s.config.Status.Ready(),
		Stats: s.config.Status.Stats(),
	}
	if err := s.config.Status.Err(); err != nil {
		resp.Error = err.Error()
	}
	if s.config.Scene != nil {
		if snap, ok := s.config.Scene.Snapshot(); ok {
			resp.Scene = &snap
		}
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe serves on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.log.WithField("addr", addr).Info("control API listening")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the scene broadcaster and gracefully closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.scene != nil {
		s.scene.Close()
	}
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
