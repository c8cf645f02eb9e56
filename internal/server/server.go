// Package server exposes parsing, extraction and generation over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/hyperifyio/goinsight/internal/generate"
)

// Config holds the server settings.
type Config struct {
	Addr string
	// RateLimit is the sustained requests per second allowed per client;
	// zero disables limiting.
	RateLimit float64
	Burst     int
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
	// RequestTimeout bounds each API request, including generation.
	RequestTimeout time.Duration
	// Normalize strips inline HTML from report text before parsing.
	Normalize bool
	// MaxRows caps the dataset rows sent to the model.
	MaxRows int
	Version string
}

const defaultMaxBody = 4 << 20

// Server routes API requests. Generator may be nil, in which case the
// generation endpoint answers 503.
type Server struct {
	cfg       Config
	log       zerolog.Logger
	generator *generate.Generator
	validate  *validator.Validate
	metrics   *metrics
	router    chi.Router
}

// New builds a server and its routes.
func New(cfg Config, logger zerolog.Logger, g *generate.Generator) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBody
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	s := &Server{
		cfg:       cfg,
		log:       logger,
		generator: g,
		validate:  newValidator(),
		metrics:   newMetrics(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(s.log))
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		if s.cfg.RateLimit > 0 {
			r.Use(newClientLimiter(s.cfg.RateLimit, s.cfg.Burst).middleware)
		}
		r.Get("/categories", s.handleCategories)
		r.Post("/parse", s.handleParse)
		r.Post("/extract/{category}", s.handleExtract)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/generate/{category}", s.handleGenerate)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorBody(r, "not found"))
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
