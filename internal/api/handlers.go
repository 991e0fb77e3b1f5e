package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/riordanpawley/planboard/internal/core/baseline"
	"github.com/riordanpawley/planboard/internal/core/commands"
	"github.com/riordanpawley/planboard/internal/core/performance"
	"github.com/riordanpawley/planboard/internal/core/phases"
	"github.com/riordanpawley/planboard/internal/core/progress"
	"github.com/riordanpawley/planboard/internal/core/timeline"
	"github.com/riordanpawley/planboard/internal/core/tree"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/services/summary"
)

type treeNode struct {
	Task     domain.Task `json:"task"`
	Progress int         `json:"progress"`
	Children []treeNode  `json:"children"`
}

type treeResponse struct {
	Roots   []treeNode `json:"roots"`
	Orphans []string   `json:"orphans,omitempty"`
	Cycles  []string   `json:"cycles,omitempty"`
}

type progressResponse struct {
	Progress int            `json:"progress"`
	Tasks    map[string]int `json:"tasks"`
}

type performanceResponse struct {
	Project performance.ProjectMetrics `json:"project"`
	Tasks   []performance.TaskIndices  `json:"tasks"`
}

type phasesResponse struct {
	phases.Result
	Groups []phases.PhaseGroup `json:"groups"`
}

type commandResponse struct {
	Changes  []domain.ChangeLog `json:"changes"`
	Warnings []string           `json:"warnings,omitempty"`
	Tasks    int                `json:"tasks"`
}

type summaryResponse struct {
	Kind summary.Kind `json:"kind"`
	Text string       `json:"text"`
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// load reads the project and refreshes the project gauges
func (s *Server) load() (domain.Project, error) {
	p, err := s.repo.Load()
	if err != nil {
		return domain.Project{}, err
	}
	pct := progress.Compute(p.Tasks, p.Configuration)
	m := performance.ForProject(p, pct)
	s.metrics.observeProject(pct, len(p.Tasks), m.AtRisk)
	return p, nil
}

func (s *Server) getProject(c echo.Context) error {
	p, err := s.load()
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) getTree(c echo.Context) error {
	p, err := s.load()
	if err != nil {
		return s.httpError(err)
	}
	f := tree.Build(p.Tasks)
	rollup := progress.Rollup(p.Tasks, p.Configuration)

	var convert func(n *tree.Node) treeNode
	convert = func(n *tree.Node) treeNode {
		out := treeNode{Task: n.Task, Progress: rollup[n.Task.ID].Percent(), Children: []treeNode{}}
		for _, child := range n.Children {
			out.Children = append(out.Children, convert(child))
		}
		return out
	}

	resp := treeResponse{Roots: []treeNode{}, Orphans: f.Orphans, Cycles: f.Cycles}
	for _, root := range f.Roots {
		resp.Roots = append(resp.Roots, convert(root))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getProgress(c echo.Context) error {
	p, err := s.load()
	if err != nil {
		return s.httpError(err)
	}
	resp := progressResponse{
		Progress: progress.Compute(p.Tasks, p.Configuration),
		Tasks:    make(map[string]int, len(p.Tasks)),
	}
	for id, n := range progress.Rollup(p.Tasks, p.Configuration) {
		resp.Tasks[id] = n.Percent()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getPerformance(c echo.Context) error {
	p, err := s.load()
	if err != nil {
		return s.httpError(err)
	}
	pct := progress.Compute(p.Tasks, p.Configuration)
	return c.JSON(http.StatusOK, performanceResponse{
		Project: performance.ForProject(p, pct),
		Tasks:   performance.ForTasks(p.Tasks, p.Configuration),
	})
}

func (s *Server) getTimeline(c echo.Context) error {
	zoom := timeline.ZoomWeek
	if raw := c.QueryParam("zoom"); raw != "" {
		z, err := timeline.ParseZoom(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		zoom = z
	}

	today := s.now()
	if raw := c.QueryParam("today"); raw != "" {
		d := domain.ParseDate(raw)
		if !d.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid today: "+raw)
		}
		today = d.Time()
	}

	p, err := s.load()
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, timeline.Build(p.Tasks, zoom, today))
}

func (s *Server) getPhases(c echo.Context) error {
	p, err := s.load()
	if err != nil {
		return s.httpError(err)
	}
	res := phases.Compute(p.Tasks)
	return c.JSON(http.StatusOK, phasesResponse{
		Result: res,
		Groups: phases.GetTasksByPhase(res.Phases),
	})
}

func (s *Server) getVariances(c echo.Context) error {
	p, err := s.load()
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, baseline.Variances(p.Tasks))
}

func (s *Server) postCommand(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, postCommandMaxSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	cmd, err := commands.Decode(body)
	if err != nil {
		s.metrics.commandFailures.WithLabelValues("unknown", "decode").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	typ := string(cmd.Type())

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return s.httpError(err)
	}

	res, err := s.reducer.Apply(p, cmd)
	if err != nil {
		s.metrics.commandFailures.WithLabelValues(typ, failureReason(err)).Inc()
		return s.httpError(err)
	}

	if err := s.repo.Save(res.Project); err != nil {
		s.metrics.commandFailures.WithLabelValues(typ, "save").Inc()
		return s.httpError(err)
	}
	if s.afterSave != nil {
		s.afterSave()
	}
	s.metrics.commands.WithLabelValues(typ).Inc()
	s.logger.Info("command applied", "type", typ, "changes", len(res.Changes), "warnings", len(res.Warnings))

	changes := res.Changes
	if changes == nil {
		changes = []domain.ChangeLog{}
	}
	return c.JSON(http.StatusOK, commandResponse{
		Changes:  changes,
		Warnings: res.Warnings,
		Tasks:    len(res.Project.Tasks),
	})
}

func (s *Server) postSummary(c echo.Context) error {
	kind, err := summary.ParseKind(c.QueryParam("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if s.summaries == nil || !s.summaries.Enabled() {
		s.metrics.summaries.WithLabelValues(string(kind), "disabled").Inc()
		return echo.NewHTTPError(http.StatusServiceUnavailable, "summaries are not configured")
	}

	p, err := s.load()
	if err != nil {
		return s.httpError(err)
	}

	text, err := s.summaries.Summarize(c.Request().Context(), p, kind)
	if err != nil {
		s.metrics.summaries.WithLabelValues(string(kind), "error").Inc()
		return s.httpError(err)
	}
	s.metrics.summaries.WithLabelValues(string(kind), "ok").Inc()
	return c.JSON(http.StatusOK, summaryResponse{Kind: kind, Text: text})
}

// httpError maps domain errors onto status codes
func (s *Server) httpError(err error) error {
	var validation *domain.ValidationError
	var summaryErr *domain.SummaryError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, domain.ErrJustificationRequired),
		errors.Is(err, domain.ErrInvalidCommand):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotConfigured):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &summaryErr):
		s.logger.Error("summary failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

func failureReason(err error) string {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.Is(err, domain.ErrJustificationRequired):
		return "justification"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidCommand):
		return "invalid"
	default:
		return "internal"
	}
}

// defaultTimeout is the fallback HTTP timeout when config leaves it at zero
const defaultTimeout = 30 * time.Second

// Timeout converts a millisecond setting, falling back to defaultTimeout
func Timeout(ms int) time.Duration {
	if ms <= 0 {
		return defaultTimeout
	}
	return time.Duration(ms) * time.Millisecond
}
