// Package server exposes the dashboard over HTTP: the page, its layout, the
// callback endpoint the page polls, server-rendered chart images and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lamim/launch-dash/internal/dataset"
	"github.com/lamim/launch-dash/internal/debug"
	"github.com/lamim/launch-dash/internal/logging"
	"github.com/lamim/launch-dash/internal/report"
)

// Options configures the HTTP surface
type Options struct {
	Title             string
	SliderStep        float64
	CompressionLevel  int
	ChartRate         float64 // chart renders admitted per second
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	Log               zerolog.Logger
	Debug             *debug.Logger
}

// Server serves one dataset through a callback registry
type Server struct {
	ds        *dataset.Dataset
	callbacks *report.Callbacks
	layout    report.Layout
	page      string
	opts      Options
	metrics   *Metrics
	router    chi.Router
}

// New builds the router and pre-renders the dashboard page.
func New(ds *dataset.Dataset, callbacks *report.Callbacks, opts Options) (*Server, error) {
	if opts.CompressionLevel <= 0 {
		opts.CompressionLevel = 5
	}
	if opts.ChartRate <= 0 {
		opts.ChartRate = 20
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = 10 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	layout := report.BuildLayout(ds, opts.Title, opts.SliderStep, callbacks.Outputs())
	page, err := report.RenderPage(report.Page{Layout: layout})
	if err != nil {
		return nil, fmt.Errorf("rendering dashboard page: %w", err)
	}

	s := &Server{
		ds:        ds,
		callbacks: callbacks,
		layout:    layout,
		page:      page,
		opts:      opts,
		metrics:   NewMetrics(),
	}
	s.metrics.records.Set(float64(ds.Len()))
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	compressor := middleware.NewCompressor(s.opts.CompressionLevel,
		"text/html", "text/plain", "application/json", "image/svg+xml")
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(compressor.Handler)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)
		r.Get("/callback/{output}", s.handleCallback)
	})
	r.With(newThrottle(s.opts.ChartRate).Middleware).Get("/charts/{file}", s.handleChart)

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.opts.Log.Info().Str("addr", ln.Addr().String()).Msg("dashboard listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.opts.Log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			s.metrics.observeRequest(route, r.Method, status, elapsed)

			event := s.opts.Log.Info()
			if status >= http.StatusInternalServerError {
				event = s.opts.Log.Error()
			}
			event.
				Str(logging.FieldRequestID, middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str(logging.FieldPath, r.URL.Path).
				Int(logging.FieldStatus, status).
				Int("bytes", ww.BytesWritten()).
				Dur(logging.FieldDuration, elapsed).
				Msg("request")
		}()

		next.ServeHTTP(ww, r)
	})
}
