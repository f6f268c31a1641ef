package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/codeseek/internal/config"
	"github.com/dshills/codeseek/internal/history"
	"github.com/dshills/codeseek/internal/host"
	"github.com/dshills/codeseek/internal/logging"
	"github.com/dshills/codeseek/internal/project"
	"github.com/dshills/codeseek/internal/toolchain"
	"github.com/ternarybob/arbor"
)

// Orchestrator routes editor-initiated operations through the external
// toolchain and back into the host.
type Orchestrator struct {
	settings config.Settings
	hostctx  *host.Context
	runner   *toolchain.Runner
	tools    *toolchain.Tools
	prober   *project.Prober
	history  *history.Store
	dir      string

	log arbor.ILogger
}

// Options configures orchestrator construction. Settings, Host, and
// Tools are required; the remaining collaborators are created with
// defaults when nil.
type Options struct {
	// Settings is the frozen session configuration.
	Settings config.Settings

	// Host supplies the editor-side providers. UI and Clipboard are
	// required; the rest may be nil for headless hosts.
	Host *host.Context

	// Tools holds the resolved tool paths.
	Tools *toolchain.Tools

	// Dir anchors project root resolution. Empty means the working
	// directory.
	Dir string

	// Runner dispatches tool invocations.
	Runner *toolchain.Runner

	// Prober reports project readiness.
	Prober *project.Prober

	// History records queries per project.
	History *history.Store
}

// NewOrchestrator wires the operations layer together.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Host == nil || opts.Host.UI == nil {
		return nil, host.ErrNoUI
	}
	if opts.Host.Clipboard == nil {
		return nil, host.ErrNoClipboard
	}
	if opts.Tools == nil {
		return nil, toolchain.ErrToolNotResolved
	}

	runner := opts.Runner
	if runner == nil {
		runner = toolchain.NewRunner(toolchain.DefaultRunnerConfig())
	}

	prober := opts.Prober
	if prober == nil {
		prober = project.NewProber(runner, opts.Tools, project.ProberConfig{
			MarkerDir: opts.Settings.MarkerDir,
			Timeout:   opts.Settings.ProbeTimeout,
		})
	}

	store := opts.History
	if store == nil && opts.Settings.History.Enabled {
		store = history.NewStore(opts.Settings.MarkerDir, opts.Settings.History.MaxEntries)
	}

	return &Orchestrator{
		settings: opts.Settings,
		hostctx:  opts.Host,
		runner:   runner,
		tools:    opts.Tools,
		prober:   prober,
		history:  store,
		dir:      opts.Dir,
		log:      logging.GetLogger(),
	}, nil
}

// Settings returns the frozen session configuration.
func (o *Orchestrator) Settings() config.Settings {
	return o.settings
}

// Runner returns the job dispatcher.
func (o *Orchestrator) Runner() *toolchain.Runner {
	return o.runner
}

// Prober returns the readiness prober.
func (o *Orchestrator) Prober() *project.Prober {
	return o.prober
}

// History returns the query log, or nil when history is disabled.
func (o *Orchestrator) History() *history.Store {
	return o.history
}

// Root resolves the project root for the session's anchor directory.
func (o *Orchestrator) Root() string {
	return project.ResolveRoot(o.dir)
}

// Search dispatches a search for query and routes the results to the
// clipboard. An empty query prompts the user first. The returned job is
// nil when the operation aborted before dispatch.
func (o *Orchestrator) Search(ctx context.Context, query string) (*toolchain.Job, error) {
	query, ok := o.resolveQuery(query, "Search: ")
	if !ok {
		return nil, nil
	}

	root := o.Root()
	if !o.ensureReady(ctx, root) {
		return nil, nil
	}

	o.recordHistory(root, history.KindSearch, query)

	return o.dispatchSearch(ctx, root, query)
}

// Analyze dispatches an analysis for query and routes the result to the
// chat sink or clipboard. An empty query prompts the user first. When
// the analysis tool is unavailable the operation degrades to a plain
// search. The returned job is nil when the operation aborted before
// dispatch.
func (o *Orchestrator) Analyze(ctx context.Context, query string) (*toolchain.Job, error) {
	query, ok := o.resolveQuery(query, "Analyze: ")
	if !ok {
		return nil, nil
	}

	root := o.Root()
	if !o.ensureReady(ctx, root) {
		return nil, nil
	}

	o.recordHistory(root, history.KindAnalyze, query)

	if !o.tools.HasAnalyze() {
		o.log.Warn().Err(o.tools.AnalyzeErr).Msg("analysis tool unavailable, degrading to search")
		return o.dispatchSearch(ctx, root, query)
	}

	job, err := o.runner.Run(ctx, toolchain.Request{
		Tool: o.tools.Analyze,
		Args: []string{query, root, strconv.Itoa(o.settings.Limit), o.settings.Provider},
		Dir:  root,
		OnDone: func(j *toolchain.Job) {
			o.handleAnalyzeDone(ctx, root, query, j)
		},
	})
	if err != nil {
		o.notify(fmt.Sprintf("Analysis failed to start: %v", err), host.NotificationError)
		return nil, err
	}

	o.log.Debug().Str("query", query).Str("root", root).Msg("analysis dispatched")
	return job, nil
}

// resolveQuery trims the query, prompting interactively when it is
// empty. The bool result is false when the operation should abort.
func (o *Orchestrator) resolveQuery(query, prompt string) (string, bool) {
	query = strings.TrimSpace(query)
	if query != "" {
		return query, true
	}

	entered, ok := o.hostctx.UI.Input(prompt, "")
	if !ok {
		return "", false
	}

	entered = strings.TrimSpace(entered)
	if entered == "" {
		return "", false
	}
	return entered, true
}

// ensureReady probes the project and notifies the user when it is not
// searchable yet.
func (o *Orchestrator) ensureReady(ctx context.Context, root string) bool {
	state := o.prober.Probe(ctx, root)
	if state.Ready() {
		return true
	}

	o.notify(readinessMessage(state), host.NotificationWarning)
	return false
}

// recordHistory appends the query to the per-project log. Failures are
// logged and otherwise ignored; history must never block an operation.
func (o *Orchestrator) recordHistory(root string, kind history.Kind, query string) {
	if o.history == nil || !o.settings.History.Enabled {
		return
	}

	if err := o.history.Record(root, kind, query); err != nil {
		o.log.Debug().Err(err).Str("root", root).Msg("history record failed")
	}
}

// dispatchSearch starts the search tool for query under root.
func (o *Orchestrator) dispatchSearch(ctx context.Context, root, query string) (*toolchain.Job, error) {
	job, err := o.runner.Run(ctx, toolchain.Request{
		Tool: o.tools.Search,
		Args: []string{query, root, strconv.Itoa(o.settings.Limit), "text"},
		Dir:  root,
		OnDone: func(j *toolchain.Job) {
			o.handleSearchDone(j)
		},
	})
	if err != nil {
		o.notify(fmt.Sprintf("Search failed to start: %v", err), host.NotificationError)
		return nil, err
	}

	o.log.Debug().Str("query", query).Str("root", root).Msg("search dispatched")
	return job, nil
}

// handleSearchDone routes a finished search job. Exactly one clipboard
// write and one notification happen per job with results; an empty
// result produces a single notification and no clipboard write.
func (o *Orchestrator) handleSearchDone(job *toolchain.Job) {
	switch job.State {
	case toolchain.JobStateCanceled:
		return
	case toolchain.JobStateSucceeded:
	default:
		o.notify(fmt.Sprintf("Search failed: %s", failureDetail(job)), host.NotificationError)
		return
	}

	output := job.Stdout()
	if strings.TrimSpace(output) == "" {
		o.notify("No results found.", host.NotificationInfo)
		return
	}

	if err := o.hostctx.Clipboard.SetClipboard(output); err != nil {
		o.notify(fmt.Sprintf("Search finished but the clipboard write failed: %v", err), host.NotificationError)
		return
	}

	o.notify(searchNotice(output), host.NotificationSuccess)
}

// handleAnalyzeDone routes a finished analysis job. A missing-command
// diagnostic on stderr triggers the one-shot search fallback; the
// fallback job is awaited so callers that wait on the analysis job
// observe the whole operation.
func (o *Orchestrator) handleAnalyzeDone(ctx context.Context, root, query string, job *toolchain.Job) {
	switch job.State {
	case toolchain.JobStateCanceled:
		return
	case toolchain.JobStateSucceeded:
	default:
		if missingToolOutput(job.Stderr()) {
			o.log.Warn().Str("query", query).Msg("analysis tool missing at invocation, degrading to search")
			if fallback, err := o.dispatchSearch(ctx, root, query); err == nil {
				_ = fallback.Wait(ctx)
			}
			return
		}
		o.notify(fmt.Sprintf("Analysis failed: %s", failureDetail(job)), host.NotificationError)
		return
	}

	output := job.Stdout()
	if strings.TrimSpace(output) == "" {
		o.notify("No analysis produced.", host.NotificationInfo)
		return
	}

	if o.hostctx.HasChat() && o.hostctx.Chat.Deliver(output) {
		o.log.Debug().Str("query", query).Msg("analysis delivered to chat")
		return
	}

	if err := o.hostctx.Clipboard.SetClipboard(output); err != nil {
		o.notify(fmt.Sprintf("Analysis finished but the clipboard write failed: %v", err), host.NotificationError)
		return
	}

	o.notify(analysisNotice(output), host.NotificationInfo)
}

// notify sends a notification through the host, logging delivery
// failures instead of surfacing them.
func (o *Orchestrator) notify(message string, level host.NotificationLevel) {
	if err := o.hostctx.UI.Notify(message, level); err != nil {
		o.log.Warn().Err(err).Msg("notification failed")
	}
}
