package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/riordanpawley/planboard/internal/api"
	"github.com/riordanpawley/planboard/internal/app"
	"github.com/riordanpawley/planboard/internal/config"
	"github.com/riordanpawley/planboard/internal/core/baseline"
	"github.com/riordanpawley/planboard/internal/core/commands"
	"github.com/riordanpawley/planboard/internal/core/timeline"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/services/store"
	"github.com/riordanpawley/planboard/internal/services/summary"
	"github.com/riordanpawley/planboard/internal/ui/dashboard"
	"github.com/riordanpawley/planboard/internal/ui/gantt"
	"github.com/riordanpawley/planboard/internal/ui/styles"
	"github.com/riordanpawley/planboard/internal/ui/table"
	"github.com/riordanpawley/planboard/internal/units"
)

// shutdownTimeout bounds how long serve waits for in-flight requests
const shutdownTimeout = 10 * time.Second

// projectName names a new project after the directory holding its file
func projectName(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// TUICommand runs the terminal dashboard until the user quits
func TUICommand(ctx context.Context, deps *Dependencies) error {
	if _, err := deps.Store.LoadOrInit(uuid.NewString(), projectName(deps.Store.Path())); err != nil {
		return err
	}

	zoom, err := timeline.ParseZoom(deps.Config.Timeline.DefaultZoom)
	if err != nil {
		deps.Logger.Warn("ignoring configured zoom", "error", err)
		zoom = timeline.ZoomWeek
	}

	opts := app.Options{
		Repo:       deps.Store,
		Reducer:    deps.Reducer,
		Zoom:       zoom,
		LabelWidth: deps.Config.Timeline.LabelWidth,
		Logger:     deps.Logger,
		Now:        deps.Now,
	}

	if deps.Config.Watch.Enabled {
		w, err := startWatcher(ctx, deps)
		if err != nil {
			return err
		}
		defer w.Stop()
		opts.Events = w.Events()
		opts.Acknowledge = w.Acknowledge
	}

	program := tea.NewProgram(app.New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func startWatcher(ctx context.Context, deps *Dependencies) (*store.Watcher, error) {
	debounce := time.Duration(deps.Config.Watch.DebounceMs) * time.Millisecond
	w, err := store.NewWatcher(deps.Store.Path(), debounce, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to watch project: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, fmt.Errorf("failed to watch project: %w", err)
	}
	return w, nil
}

// ReportCommand prints the dashboard cards, the task table and any
// baseline slippage
func ReportCommand(deps *Dependencies, width int) error {
	p, err := deps.Store.Load()
	if err != nil {
		return err
	}
	s := styles.New()

	fmt.Fprintln(deps.Out, dashboard.Render(dashboard.Summarize(p), width, s))
	fmt.Fprintln(deps.Out)

	rows := table.Build(p, nil, nil)
	fmt.Fprintln(deps.Out, cleanLines(table.Render(rows, p.Configuration, -1, 0, width, len(rows)+1, s)))

	if p.BaselineSavedAt == nil {
		return nil
	}
	var slipped []baseline.Variance
	for _, v := range baseline.Variances(p.Tasks) {
		if v.StartDays != 0 || v.EndDays != 0 {
			slipped = append(slipped, v)
		}
	}
	if len(slipped) == 0 {
		fmt.Fprintf(deps.Out, "\nOn baseline (saved %s)\n", p.BaselineSavedAt.Format("2006-01-02"))
		return nil
	}

	fmt.Fprintf(deps.Out, "\nSlippage against baseline (saved %s):\n", p.BaselineSavedAt.Format("2006-01-02"))
	w := tabwriter.NewWriter(deps.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tSTART\tEND")
	for _, v := range slipped {
		name := v.TaskID
		if t, ok := p.TaskByID(v.TaskID); ok {
			name = t.Name
		}
		fmt.Fprintf(w, "%s\t%+dd\t%+dd\n", name, v.StartDays, v.EndDays)
	}
	return w.Flush()
}

// GanttCommand prints the chart. A width of zero fits every column.
func GanttCommand(deps *Dependencies, zoomName string, width int, showBaseline bool) error {
	zoom, err := timeline.ParseZoom(zoomName)
	if err != nil {
		return err
	}
	p, err := deps.Store.Load()
	if err != nil {
		return err
	}

	tl := timeline.Build(p.Tasks, zoom, deps.Now())
	labelWidth := deps.Config.Timeline.LabelWidth
	if width <= 0 {
		width = labelWidth + 1 + tl.Columns*gantt.CellWidth(zoom)
	}

	chart := gantt.Render(tl, gantt.Options{
		Width:        width,
		LabelWidth:   labelWidth,
		Cursor:       -1,
		ShowBaseline: showBaseline,
	}, styles.New())
	fmt.Fprintln(deps.Out, cleanLines(chart))
	return nil
}

// ApplyCommand loads the project, applies cmd and saves the result
func ApplyCommand(deps *Dependencies, cmd commands.Command) (commands.Result, error) {
	p, err := deps.Store.Load()
	if err != nil {
		return commands.Result{}, err
	}
	res, err := deps.Reducer.Apply(p, cmd)
	if err != nil {
		return commands.Result{}, err
	}
	if err := deps.Store.Save(res.Project); err != nil {
		return commands.Result{}, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(deps.Out, "warning:", w)
	}
	deps.Logger.Info("command applied", "type", cmd.Type(), "changes", len(res.Changes))
	return res, nil
}

// BaselineSaveCommand snapshots every task's planned dates
func BaselineSaveCommand(deps *Dependencies) error {
	res, err := ApplyCommand(deps, commands.SaveBaseline{})
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Out, "Baseline saved for %d tasks at %s\n", len(res.Project.Tasks), res.Project.BaselineSavedAt.Format(time.RFC3339))
	return nil
}

// BaselineClearCommand removes the baseline from the project and its tasks
func BaselineClearCommand(deps *Dependencies) error {
	if _, err := ApplyCommand(deps, commands.DeleteBaseline{}); err != nil {
		return err
	}
	fmt.Fprintln(deps.Out, "Baseline cleared")
	return nil
}

// ServeCommand runs the HTTP API until ctx is cancelled
func ServeCommand(ctx context.Context, deps *Dependencies, addr string) error {
	if addr == "" {
		addr = deps.Config.Server.Addr
	}
	if _, err := deps.Store.LoadOrInit(uuid.NewString(), projectName(deps.Store.Path())); err != nil {
		return err
	}

	opts := []api.Option{
		api.WithLogger(deps.Logger),
		api.WithSummarizer(newSummaryService(deps)),
		api.WithClock(deps.Now),
	}
	if deps.Config.Watch.Enabled {
		w, err := startWatcher(ctx, deps)
		if err != nil {
			return err
		}
		defer w.Stop()
		opts = append(opts, api.WithAfterSave(w.Acknowledge))
		go logExternalChanges(deps, w.Events())
	}

	srv := api.NewServer(deps.Store, deps.Reducer, opts...)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr, api.Timeout(deps.Config.Server.ReadTimeoutMs), api.Timeout(deps.Config.Server.WriteTimeoutMs))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	deps.Logger.Info("shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-errCh
}

// logExternalChanges reports edits made to the file outside the API.
// Every request reloads the file, so nothing else needs refreshing.
func logExternalChanges(deps *Dependencies, events <-chan store.Event) {
	for ev := range events {
		if ev.Removed {
			deps.Logger.Warn("project file removed", "path", ev.Path)
			continue
		}
		deps.Logger.Info("project file changed on disk", "path", ev.Path)
	}
}

// SummaryCommand prints an AI summary, risk list or lessons learned
func SummaryCommand(ctx context.Context, deps *Dependencies, kindName string) error {
	kind, err := summary.ParseKind(kindName)
	if err != nil {
		return err
	}
	svc := newSummaryService(deps)
	if !svc.Enabled() {
		return fmt.Errorf("summaries are not configured: set %s and enable summary in %s", summary.APIKeyEnv, config.FileName)
	}

	p, err := deps.Store.Load()
	if err != nil {
		return err
	}
	text, err := svc.Summarize(ctx, p, kind)
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Out, text)
	return nil
}

// EffortCommand converts an effort such as "3d" into every unit, or into
// unitName alone when it is set
func EffortCommand(out io.Writer, input, unitName string) error {
	hours, err := units.Parse(input)
	if err != nil {
		return err
	}

	if unitName != "" {
		u, err := units.ParseUnit(unitName)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%g %s\n", units.FromHours(hours, u), u)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, u := range units.All {
		fmt.Fprintf(w, "%s\t%g\n", u, units.FromHours(hours, u))
	}
	fmt.Fprintf(w, "best\t%s\n", units.Format(hours))
	return w.Flush()
}

// ProjectsListCommand prints the registered projects
func ProjectsListCommand(out io.Writer) error {
	reg, err := config.LoadProjectsRegistry()
	if err != nil {
		return fmt.Errorf("failed to load projects registry: %w", err)
	}
	if len(reg.Projects) == 0 {
		fmt.Fprintln(out, "No registered projects")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPATH\tDEFAULT")
	for _, p := range reg.Projects {
		mark := ""
		if p.Name == reg.DefaultProject {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Path, mark)
	}
	return w.Flush()
}

// ProjectsAddCommand registers a project file under name
func ProjectsAddCommand(out io.Writer, name, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return updateRegistry(func(reg *config.ProjectsRegistry) error {
		if err := reg.Add(name, abs); err != nil {
			return err
		}
		fmt.Fprintf(out, "Registered %s -> %s\n", name, abs)
		return nil
	})
}

// ProjectsRemoveCommand unregisters a project. The file is left alone.
func ProjectsRemoveCommand(out io.Writer, name string) error {
	return updateRegistry(func(reg *config.ProjectsRegistry) error {
		if err := reg.Remove(name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %s\n", name)
		return nil
	})
}

// ProjectsDefaultCommand marks a registered project as the fallback
func ProjectsDefaultCommand(out io.Writer, name string) error {
	return updateRegistry(func(reg *config.ProjectsRegistry) error {
		if err := reg.SetDefault(name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Default project is now %s\n", name)
		return nil
	})
}

func updateRegistry(fn func(reg *config.ProjectsRegistry) error) error {
	reg, err := config.LoadProjectsRegistry()
	if err != nil {
		return fmt.Errorf("failed to load projects registry: %w", err)
	}
	if err := fn(reg); err != nil {
		return err
	}
	if err := config.SaveProjectsRegistry(reg); err != nil {
		return fmt.Errorf("failed to save projects registry: %w", err)
	}
	return nil
}

// describeError adds a hint for the errors users hit most
func describeError(err error) error {
	var storeErr *domain.StoreError
	if errors.As(err, &storeErr) && errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w (run planboard to create it, or pass --project)", err)
	}
	return err
}

// cleanLines trims trailing spaces the renderers pad lines with
func cleanLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
