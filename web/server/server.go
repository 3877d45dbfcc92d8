// Package server exposes the built-in scenes over HTTP for inspection: volume
// summaries, the intervals and hits of single rays, and small renders.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/zenazn/goji/web"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-volume-iterators/pkg/driver"
	"github.com/df07/go-volume-iterators/pkg/renderer"
	"github.com/df07/go-volume-iterators/pkg/scene"
)

var errZeroDirection = errors.New("ray direction must not be zero")

// Options configure a Server
type Options struct {
	Port   int
	Driver driver.Driver
	Scene  scene.Options
	Render renderer.Config
	Logger *slog.Logger
}

// Server handles web requests for volume inspection
type Server struct {
	opts   Options
	logger *slog.Logger
	mux    *web.Mux

	mu     sync.Mutex
	scenes map[string]*scene.Scene // committed scenes, built on first use
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		opts:   opts,
		logger: logger,
		scenes: make(map[string]*scene.Scene),
	}

	mux := web.New()
	mux.Use(s.logRequests)
	mux.Get("/api/health", s.handleHealth)
	mux.Get("/api/scenes", s.handleScenes)
	mux.Get("/api/volume/:scene", s.handleVolume)
	mux.Get("/api/inspect/:scene", s.handleInspect)
	mux.Get("/api/render/:scene", s.handleRender)
	s.mux = mux
	return s
}

// Handler returns the routing handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.opts.Port),
		Handler: s.mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting web server", "addr", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// logRequests is goji middleware logging every request at debug level
func (s *Server) logRequests(c *web.C, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "driver": s.opts.Driver.Name()})
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.List())
}

// getScene returns the committed scene, building it on first use
func (s *Server) getScene(ctx context.Context, name string) (*scene.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc, ok := s.scenes[name]; ok {
		return sc, nil
	}
	sc, err := scene.New(ctx, name, s.opts.Scene)
	if err != nil {
		return nil, err
	}
	s.logger.Info("built scene", "scene", name, "dims", sc.Volume.Dimensions())
	s.scenes[name] = sc
	return sc, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
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

// parseFloatParam parses a float32 parameter from URL query
func parseFloatParam(values url.Values, key string, defaultValue float32) (float32, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return float32(parsed), nil
	}
	return defaultValue, nil
}
