package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/riordanpawley/planboard/internal/config"
	"github.com/riordanpawley/planboard/internal/core/commands"
	"github.com/riordanpawley/planboard/internal/services/store"
	"github.com/riordanpawley/planboard/internal/services/summary"
)

// Dependencies holds the services shared by every command
type Dependencies struct {
	Config  *config.Config
	Store   *store.FileStore
	Reducer *commands.Reducer
	Logger  *slog.Logger
	Out     io.Writer
	Now     func() time.Time
}

// NewDependencies opens the configured project file. Log output goes to
// logOut, command output to out.
func NewDependencies(cfg *config.Config, out, logOut io.Writer) (*Dependencies, error) {
	logger, err := NewLogger(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}

	st, err := store.NewFileStore(cfg.ProjectFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open project: %w", err)
	}

	reducer := commands.NewReducer(
		commands.WithActor(cfg.Actor),
		commands.WithLogger(logger),
	)

	return &Dependencies{
		Config:  cfg,
		Store:   st,
		Reducer: reducer,
		Logger:  logger,
		Out:     out,
		Now:     time.Now,
	}, nil
}

// NewLogger builds a text or JSON slog logger at the configured level
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", cfg.Level)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", cfg.Format)
	}
}

// resolveProjectFile picks the project file with priority:
// 1. --project, as a registered name or a path
// 2. the configured file, when it exists or was set explicitly
// 3. a project file found walking up from dir
// 4. the registry default
// 5. the configured file, created on first use
func resolveProjectFile(cfg *config.Config, flag, dir string, logger *slog.Logger) (string, error) {
	reg, err := config.LoadProjectsRegistry()
	if err != nil {
		logger.Warn("failed to load projects registry", "error", err)
		reg = &config.ProjectsRegistry{}
	}

	if flag != "" {
		if p, err := reg.Get(flag); err == nil {
			return p.Path, nil
		}
		return filepath.Abs(flag)
	}

	if os.Getenv(config.EnvProject) != "" || fileExists(cfg.ProjectFile) {
		return cfg.ProjectFile, nil
	}
	if p, err := config.DetectProjectFromDir(dir); err == nil {
		logger.Debug("detected project file", "path", p.Path)
		return p.Path, nil
	}
	if p := reg.GetDefault(); p != nil {
		logger.Debug("using default project", "name", p.Name)
		return p.Path, nil
	}
	return cfg.ProjectFile, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// newSummaryService returns a service whose generator is nil, and so
// reports itself disabled, when summaries are off or no key is set
func newSummaryService(deps *Dependencies) *summary.Service {
	cfg := deps.Config.Summary
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if !cfg.Enabled {
		return summary.NewService(nil, deps.Logger, timeout)
	}

	client, err := summary.NewClient(&http.Client{}, deps.Logger,
		summary.WithModel(cfg.Model),
		summary.WithMaxTokens(cfg.MaxTokens),
	)
	if err != nil {
		if errors.Is(err, summary.ErrNoAPIKey) {
			deps.Logger.Debug("summaries disabled", "reason", err)
		} else {
			deps.Logger.Warn("failed to create summary client", "error", err)
		}
		return summary.NewService(nil, deps.Logger, timeout)
	}
	return summary.NewService(client, deps.Logger, timeout)
}
