// Package api exposes the project and its derived views over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/riordanpawley/planboard/internal/core/commands"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/services/summary"
)

// postCommandMaxSize bounds a command request body
const postCommandMaxSize = 4 << 20

// Repository loads and saves the single project served by the API
type Repository interface {
	Load() (domain.Project, error)
	Save(p domain.Project) error
}

// Summarizer produces AI text about a project
type Summarizer interface {
	Enabled() bool
	Summarize(ctx context.Context, p domain.Project, kind summary.Kind) (string, error)
}

// Server is the HTTP front of one project file.
//
// Every command runs load, apply and save under one mutex, so concurrent
// writers are serialized and the last one wins.
type Server struct {
	echo      *echo.Echo
	repo      Repository
	reducer   *commands.Reducer
	summaries Summarizer
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
	afterSave func()

	mu sync.Mutex
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSummarizer enables POST /api/summary
func WithSummarizer(sum Summarizer) Option {
	return func(s *Server) {
		s.summaries = sum
	}
}

// WithClock overrides the clock used for the timeline's today marker
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithMetrics supplies the metrics set instead of a fresh one
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAfterSave registers a hook run after every successful save, while
// the write lock is still held
func WithAfterSave(fn func()) Option {
	return func(s *Server) {
		s.afterSave = fn
	}
}

// NewServer wires routes and middleware around repo
func NewServer(repo Repository, reducer *commands.Reducer, opts ...Option) *Server {
	s := &Server{
		repo:    repo,
		reducer: reducer,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.metrics.Middleware())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				s.logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			s.logger.Debug("request", attrs...)
			return nil
		},
	}))
	s.echo = e

	s.register()
	return s
}

func (s *Server) register() {
	e := s.echo
	e.GET("/healthz", s.healthz)
	e.GET("/metrics", s.metrics.Handler())

	g := e.Group("/api")
	g.GET("/project", s.getProject)
	g.GET("/tree", s.getTree)
	g.GET("/progress", s.getProgress)
	g.GET("/performance", s.getPerformance)
	g.GET("/timeline", s.getTimeline)
	g.GET("/phases", s.getPhases)
	g.GET("/variances", s.getVariances)
	g.POST("/commands", s.postCommand)
	g.POST("/summary", s.postSummary)
}

// Handler returns the server as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Metrics returns the server's metrics
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start listens on addr until Shutdown is called
func (s *Server) Start(addr string, readTimeout, writeTimeout time.Duration) error {
	s.echo.Server.ReadTimeout = readTimeout
	s.echo.Server.WriteTimeout = writeTimeout
	s.logger.Info("api listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
