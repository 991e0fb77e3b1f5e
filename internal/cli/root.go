package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riordanpawley/planboard/internal/config"
	"github.com/riordanpawley/planboard/internal/core/timeline"
)

// rootOptions are the persistent flags shared by every subcommand
type rootOptions struct {
	project  string
	logLevel string
	logFile  string
}

// dependencies loads config from the working directory and wires the
// services. Dashboard output owns the terminal, so tui logs go to --log-file
// or nowhere.
func (o *rootOptions) dependencies(cmd *cobra.Command, tui bool) (*Dependencies, func(), error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	cleanup := func() {}
	var logOut io.Writer = cmd.ErrOrStderr()
	switch {
	case o.logFile != "":
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logOut = f
		cleanup = func() { f.Close() }
	case tui:
		logOut = io.Discard
	}

	bootLogger, err := NewLogger(cfg.Log, logOut)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	path, err := resolveProjectFile(cfg, o.project, cwd, bootLogger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cfg.ProjectFile = path

	deps, err := NewDependencies(cfg, cmd.OutOrStdout(), logOut)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return deps, cleanup, nil
}

// run wraps a command body that needs Dependencies
func (o *rootOptions) run(tui bool, fn func(cmd *cobra.Command, args []string, deps *Dependencies) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		deps, cleanup, err := o.dependencies(cmd, tui)
		if err != nil {
			return err
		}
		defer cleanup()
		return describeError(fn(cmd, args, deps))
	}
}

// NewRootCommand builds the planboard command tree
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "planboard",
		Short: "Project planning dashboard for the terminal",
		Long: `planboard tracks a project's task tree, progress, schedule and cost
from a single JSON or YAML file.

Run without a subcommand to open the dashboard.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: opts.run(true, func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
			return TUICommand(cmd.Context(), deps)
		}),
	}
	root.PersistentFlags().StringVarP(&opts.project, "project", "p", "", "project file, or a registered project name")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "append logs to this file")

	root.AddCommand(
		tuiCmd(opts),
		reportCmd(opts),
		ganttCmd(opts),
		baselineCmd(opts),
		serveCmd(opts),
		summaryCmd(opts),
		effortCmd(),
		projectsCmd(),
	)
	return root
}

func tuiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the dashboard",
		Args:  cobra.NoArgs,
		RunE: opts.run(true, func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
			return TUICommand(cmd.Context(), deps)
		}),
	}
}

func reportCmd(opts *rootOptions) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the project dashboard and task table",
		Args:  cobra.NoArgs,
		RunE: opts.run(false, func(_ *cobra.Command, _ []string, deps *Dependencies) error {
			return ReportCommand(deps, width)
		}),
	}
	cmd.Flags().IntVarP(&width, "width", "w", 120, "output width")
	return cmd
}

func ganttCmd(opts *rootOptions) *cobra.Command {
	var (
		zoom     string
		width    int
		baseline bool
	)
	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Print the Gantt chart",
		Long: `Print the Gantt chart at day, week or month zoom.

Examples:
  planboard gantt --zoom day
  planboard gantt --zoom month --baseline
  planboard gantt --width 100`,
		Args: cobra.NoArgs,
		RunE: opts.run(false, func(_ *cobra.Command, _ []string, deps *Dependencies) error {
			if zoom == "" {
				zoom = deps.Config.Timeline.DefaultZoom
			}
			return GanttCommand(deps, zoom, width, baseline)
		}),
	}
	cmd.Flags().StringVarP(&zoom, "zoom", "z", "", fmt.Sprintf("zoom level (%s, %s, %s)", timeline.ZoomDay, timeline.ZoomWeek, timeline.ZoomMonth))
	cmd.Flags().IntVarP(&width, "width", "w", 0, "output width, 0 to fit the whole chart")
	cmd.Flags().BoolVarP(&baseline, "baseline", "b", false, "draw baseline bars under planned bars")
	return cmd
}

func baselineCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Save or clear the schedule baseline",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "save",
			Short: "Snapshot planned dates as the baseline",
			Args:  cobra.NoArgs,
			RunE: opts.run(false, func(_ *cobra.Command, _ []string, deps *Dependencies) error {
				return BaselineSaveCommand(deps)
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the baseline",
			Args:  cobra.NoArgs,
			RunE: opts.run(false, func(_ *cobra.Command, _ []string, deps *Dependencies) error {
				return BaselineClearCommand(deps)
			}),
		},
	)
	return cmd
}

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project over HTTP",
		Args:  cobra.NoArgs,
		RunE: opts.run(false, func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
			return ServeCommand(cmd.Context(), deps, addr)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func summaryCmd(opts *rootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Ask the model for a summary, risks or lessons learned",
		Args:  cobra.NoArgs,
		RunE: opts.run(false, func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
			return SummaryCommand(cmd.Context(), deps, kind)
		}),
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "summary", "summary, risks or lessons")
	return cmd
}

func effortCmd() *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "effort <value>",
		Short: "Convert an effort such as 3d or 1.5w between units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return EffortCommand(cmd.OutOrStdout(), args[0], unit)
		},
	}
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "print only this unit")
	return cmd
}

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage registered projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ProjectsListCommand(cmd.OutOrStdout())
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name> <path>",
			Short: "Register a project file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return ProjectsAddCommand(cmd.OutOrStdout(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "remove <name>",
			Short: "Unregister a project",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return ProjectsRemoveCommand(cmd.OutOrStdout(), args[0])
			},
		},
		&cobra.Command{
			Use:   "default <name>",
			Short: "Set the project used when none is found",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return ProjectsDefaultCommand(cmd.OutOrStdout(), args[0])
			},
		},
	)
	return cmd
}

// Execute runs the command tree until it finishes or the process is
// interrupted
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
