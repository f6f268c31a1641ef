package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/codeseek/internal/host"
	"github.com/dshills/codeseek/internal/project"
)

// StatusReport aggregates everything Status shows about the current
// project. It is a plain snapshot with no behavior beyond rendering.
type StatusReport struct {
	// Root is the resolved project root.
	Root string

	// State is the probed readiness.
	State project.State

	// MarkerPath is where the init marker lives or would live.
	MarkerPath string

	// MarkerPresent reports whether the marker directory exists.
	MarkerPresent bool

	// Provider is the configured analysis backend.
	Provider string

	// Limit is the configured result cap.
	Limit int

	// SearchTool is the resolved search binary.
	SearchTool string

	// AnalyzeTool is the resolved analysis binary, empty when missing.
	AnalyzeTool string

	// ChatConnected reports whether a chat sink is attached.
	ChatConnected bool
}

// Report probes the project and collects the readiness snapshot. It
// reads state only; nothing is dispatched beyond the probe and nothing
// is written.
func (o *Orchestrator) Report(ctx context.Context) StatusReport {
	root := o.Root()

	report := StatusReport{
		Root:          root,
		State:         o.prober.Probe(ctx, root),
		MarkerPath:    o.prober.MarkerPath(root),
		MarkerPresent: o.prober.MarkerPresent(root),
		Provider:      o.settings.Provider,
		Limit:         o.settings.Limit,
		SearchTool:    o.tools.Search,
		ChatConnected: o.hostctx.HasChat(),
	}
	if o.tools.HasAnalyze() {
		report.AnalyzeTool = o.tools.Analyze
	}

	return report
}

// Status shows the readiness report as a notification and returns it.
func (o *Orchestrator) Status(ctx context.Context) StatusReport {
	report := o.Report(ctx)
	o.notify(report.Render(), host.NotificationInfo)
	return report
}

// Render formats the report as a fixed multi-line block.
func (r StatusReport) Render() string {
	marker := "missing"
	if r.MarkerPresent {
		marker = "present"
	}

	indexed := "no"
	if r.State.Ready() {
		indexed = "yes"
	}

	analyze := "unavailable"
	if r.AnalyzeTool != "" {
		analyze = r.AnalyzeTool
	}

	chat := "none"
	if r.ChatConnected {
		chat = "connected"
	}

	var b strings.Builder
	b.WriteString("CodeSeek status\n")
	fmt.Fprintf(&b, "  Root:     %s\n", r.Root)
	fmt.Fprintf(&b, "  Marker:   %s (%s)\n", marker, r.MarkerPath)
	fmt.Fprintf(&b, "  Indexed:  %s\n", indexed)
	fmt.Fprintf(&b, "  Provider: %s (limit %d)\n", r.Provider, r.Limit)
	fmt.Fprintf(&b, "  Search:   %s\n", r.SearchTool)
	fmt.Fprintf(&b, "  Analyze:  %s\n", analyze)
	fmt.Fprintf(&b, "  Chat:     %s\n", chat)
	fmt.Fprintf(&b, "  Next:     %s", r.nextStep())
	return b.String()
}

// nextStep names the action that moves the project forward.
func (r StatusReport) nextStep() string {
	switch r.State {
	case project.StateUninitialized:
		return fmt.Sprintf("run '%s' to initialize this project", r.State.Remediation())
	case project.StateUnindexed:
		return fmt.Sprintf("run '%s' to build the index", r.State.Remediation())
	default:
		return "ready to search"
	}
}
