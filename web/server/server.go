package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/gorilla/mux"
)

// Options configures the server
type Options struct {
	Width           int // Default render width, 0 keeps the scene's
	SamplesPerPixel int
	MaxDepth        int
	Workers         int
	Frames          int // Default frame count for PNG renders
	EarthTexture    string
	MeshPath        string
	Origins         []string // Allowed websocket origin patterns
	StaticDir       string   // Served at / when it exists
}

// Server handles web requests for the progressive path tracer
type Server struct {
	opts   Options
	logger *slog.Logger
	router *mux.Router
}

// NewServer creates a server and its routes
func NewServer(opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Frames <= 0 {
		opts.Frames = 16
	}

	s := &Server{opts: opts, logger: logger}

	r := mux.NewRouter()
	r.Use(s.recovery)
	r.Use(s.requestLogger)

	r.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/scenes", s.handleScenes).Methods("GET")
	r.HandleFunc("/api/render/{scene}", s.handleRender).Methods("GET")
	r.HandleFunc("/api/inspect/{scene}", s.handleInspect).Methods("GET")
	r.HandleFunc("/ws/{scene}", s.handleStream)

	if opts.StaticDir != "" {
		if info, err := os.Stat(opts.StaticDir); err == nil && info.IsDir() {
			r.PathPrefix("/").Handler(http.FileServer(http.Dir(opts.StaticDir))).Methods("GET")
		}
	}

	s.router = r
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the registered scenes by group
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.ListAllScenes())
}

// sceneRequest holds the parameters shared by every per-scene endpoint
type sceneRequest struct {
	Scene           string
	Width           int
	SamplesPerPixel int
	MaxDepth        int
}

// parseSceneRequest reads the scene name from the path and the camera
// overrides from the query
func (s *Server) parseSceneRequest(r *http.Request) (*sceneRequest, error) {
	req := &sceneRequest{Scene: mux.Vars(r)["scene"]}
	query := r.URL.Query()

	var err error
	if req.Width, err = parseIntParam(query, "width", s.opts.Width, 8, 2000); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(query, "spp", s.opts.SamplesPerPixel, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", s.opts.MaxDepth, 1, 1000); err != nil {
		return nil, err
	}
	return req, nil
}

// buildScene builds the requested scene with the server's asset paths
func (s *Server) buildScene(req *sceneRequest, logger *slog.Logger) (*scene.Scene, error) {
	return scene.ByName(req.Scene, scene.Options{
		Width:           req.Width,
		SamplesPerPixel: req.SamplesPerPixel,
		MaxDepth:        req.MaxDepth,
		EarthTexture:    s.opts.EarthTexture,
		MeshPath:        s.opts.MeshPath,
		Logger:          logger,
	})
}

// newSession builds the requested scene and a renderer for it, writing the
// HTTP error itself on failure
func (s *Server) newSession(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*renderer.Session, bool) {
	req, err := s.parseSceneRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	sc, err := s.buildScene(req, logger)
	if errors.Is(err, scene.ErrUnknownScene) {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	config := renderer.DefaultProgressiveConfig()
	config.NumWorkers = s.opts.Workers
	return renderer.NewSession(sc, config, logger), true
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// Hijack passes the connection through for websocket upgrades
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := sr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("server: response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
	})
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger.Error("panic in handler", "path", r.URL.Path, "panic", v, "stack", string(debug.Stack()))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
