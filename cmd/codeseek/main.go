// Package main is the codeseek terminal frontend. It drives the same
// workflow the editor plugin uses, with stdout standing in for the
// clipboard so results are pipeable.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/codeseek/internal/config"
	"github.com/dshills/codeseek/internal/project"
	"github.com/dshills/codeseek/internal/toolchain"
	"github.com/dshills/codeseek/internal/watch"
	"github.com/dshills/codeseek/internal/workflow"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errReported marks failures the user has already seen as a
// notification; run prints nothing more for them.
var errReported = errors.New("already reported")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// cliOptions holds the global flags shared by every subcommand.
type cliOptions struct {
	configPath string
	provider   string
	limit      int
	dir        string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "codeseek",
		Short:         "Semantic code search from the terminal",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a configuration file")
	flags.StringVar(&opts.provider, "provider", "", "Analysis provider override")
	flags.IntVar(&opts.limit, "limit", 0, "Result limit override")
	flags.StringVar(&opts.dir, "dir", "", "Project directory (default: working directory)")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	root.AddCommand(
		newSearchCommand(opts),
		newAnalyzeCommand(opts),
		newStatusCommand(opts),
		newHistoryCommand(opts),
		newWatchCommand(opts),
	)

	return root
}

func newSearchCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search the project index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args, false)
		},
	}
}

func newAnalyzeCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [query]",
		Short: "Ask the analysis provider about the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args, true)
		},
	}
}

func newStatusCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := buildOrchestrator(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer orch.Teardown()

			fmt.Println(orch.Report(cmd.Context()).Render())
			return nil
		},
	}
}

func newHistoryCommand(opts *cliOptions) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent queries for this project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := buildOrchestrator(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer orch.Teardown()

			store := orch.History()
			if store == nil {
				fmt.Println("History is disabled.")
				return nil
			}

			entries := store.Recent(orch.Root(), count)
			if len(entries) == 0 {
				fmt.Println("No queries recorded yet.")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s  %-7s  %s\n", e.At.Format("2006-01-02 15:04"), e.Kind, e.Query)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of entries to show")
	return cmd
}

func newWatchCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report readiness transitions until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			orch, err := buildOrchestrator(ctx, opts)
			if err != nil {
				return err
			}
			defer orch.Teardown()

			root := orch.Root()
			w := watch.New(orch.Prober(), watch.DefaultConfig(root), func(state project.State) {
				fmt.Printf("%s  %s\n", time.Now().Format("15:04:05"), state)
			})

			fmt.Fprintf(os.Stderr, "Watching %s\n", root)
			if err := w.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			return w.Stop()
		},
	}
}

// runQuery dispatches one search or analysis and waits for its result
// routing to finish. Results reach stdout through the terminal
// clipboard provider.
func runQuery(ctx context.Context, opts *cliOptions, args []string, analyze bool) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" && !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("a query is required when stdin is not a terminal")
	}

	orch, err := buildOrchestrator(ctx, opts)
	if err != nil {
		return err
	}
	defer orch.Teardown()

	var job *toolchain.Job
	if analyze {
		job, err = orch.Analyze(ctx, query)
	} else {
		job, err = orch.Search(ctx, query)
	}
	if err != nil {
		return errReported
	}
	if job == nil {
		// Aborted before dispatch; any readiness warning already printed.
		return errReported
	}

	if err := job.Wait(ctx); err != nil {
		return errReported
	}
	if job.State != toolchain.JobStateSucceeded {
		return errReported
	}
	return nil
}

// buildOrchestrator runs workflow setup against the terminal host.
// Flag values enter as configuration overrides so the precedence rules
// stay in one place.
func buildOrchestrator(ctx context.Context, opts *cliOptions) (*workflow.Orchestrator, error) {
	overrides := map[string]any{
		// One-shot invocations have no use for the greeting.
		"auto_setup": false,
	}
	if opts.provider != "" {
		overrides["provider"] = opts.provider
	}
	if opts.limit > 0 {
		overrides["limit"] = opts.limit
	}
	if opts.verbose {
		overrides["logging.level"] = "debug"
	}

	var cfg *config.Config
	if opts.configPath != "" {
		cfg = config.New(config.WithProjectDir(project.ResolveRoot(opts.dir)))
		if err := cfg.Load(); err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		if err := cfg.LoadFile(opts.configPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.configPath, err)
		}
	}

	return workflow.Setup(ctx, workflow.SetupOptions{
		Host:      newTerminalContext(),
		Dir:       opts.dir,
		Overrides: overrides,
		Config:    cfg,
	})
}
