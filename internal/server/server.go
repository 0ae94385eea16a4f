// Package server provides the HTTP display surface: JSON snapshots, a
// websocket frame stream, the camera preview and the body catalog API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/hologram/internal/app"
	"github.com/ayusman/hologram/internal/interaction"
	"github.com/ayusman/hologram/internal/metrics"
	"github.com/ayusman/hologram/internal/server/api"
	"github.com/ayusman/hologram/internal/store"
)

// Session is the read side of a running session, plus the viewport report.
type Session interface {
	ID() string
	State() interaction.State
	Frame() app.Frame
	Focused() string
	Subscribe() (<-chan app.Frame, func())
	SetViewport(vp interaction.Viewport)
}

// LevelControl reads and changes the process log level at runtime.
type LevelControl interface {
	Level() slog.Level
	SetLevel(level string) error
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Session   Session
	Preview   FrameSource
	Metrics   *metrics.Metrics
	Levels    LevelControl
	Logger    *slog.Logger
}

// Server represents the HTTP server for the hologram display.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    *slog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    config.Logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Session != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.HandleFunc("/api/frame", s.handleFrame)
		s.mux.Handle("/api/ws", NewFrameHandler(s.config.Session, s.config.Metrics, s.log))
	}

	if s.config.Store != nil {
		bodies := api.NewBodyHandler(s.config.Store)
		s.mux.Handle("/api/bodies", bodies)
		s.mux.Handle("/api/bodies/", bodies)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics.Handler())
	}

	if s.config.Levels != nil {
		s.mux.HandleFunc("/api/log-level", s.handleLogLevel)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Session != nil {
		response["session"] = s.config.Session.ID()
	}

	writeJSON(w, response)
}

type stateResponse struct {
	State   interaction.State `json:"state"`
	Focused string            `json:"focused"`
}

// handleState handles GET /api/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, stateResponse{
		State:   s.config.Session.State(),
		Focused: s.config.Session.Focused(),
	})
}

// handleFrame handles GET /api/frame.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, s.config.Session.Frame())
}

type logLevelBody struct {
	Level string `json:"level"`
}

// handleLogLevel handles GET and PUT /api/log-level.
func (s *Server) handleLogLevel(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var body logLevelBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := s.config.Levels.SetLevel(body.Level); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Info("log level changed", "level", s.config.Levels.Level())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, logLevelBody{Level: strings.ToLower(s.config.Levels.Level().String())})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("http server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
