package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/codeseek/internal/config"
	"github.com/dshills/codeseek/internal/host"
	"github.com/dshills/codeseek/internal/logging"
	"github.com/dshills/codeseek/internal/project"
	"github.com/dshills/codeseek/internal/toolchain"
	"github.com/joho/godotenv"
)

// Command names registered with the host.
const (
	cmdSearch  = "CSeekSearch"
	cmdAnalyze = "CSeekAnalyze"
	cmdStatus  = "CSeekStatus"
)

// SetupOptions configures the composition root.
type SetupOptions struct {
	// Host supplies the editor-side providers. Setup registers commands
	// and key bindings, so every provider is required.
	Host *host.Context

	// Dir anchors project root resolution and configuration discovery.
	// Empty means the working directory.
	Dir string

	// Overrides are programmatic settings applied over every loaded
	// configuration layer, keyed by dotted path.
	Overrides map[string]any

	// Config, when non-nil, replaces the default load sequence. Useful
	// for hosts that assemble configuration themselves.
	Config *config.Config
}

// Setup builds a ready orchestrator for an editor host: it loads
// configuration, resolves the external tools, registers the commands and
// key bindings, and greets with a readiness line when auto_setup is on.
//
// A missing search tool is a hard error. A missing analysis tool is not;
// Analyze degrades to Search until it appears.
func Setup(ctx context.Context, opts SetupOptions) (*Orchestrator, error) {
	root := project.ResolveRoot(opts.Dir)

	// Project-local .env feeds the environment layer. Real environment
	// variables still win.
	_ = godotenv.Load(filepath.Join(root, ".env"))

	cfg := opts.Config
	if cfg == nil {
		cfg = config.New(config.WithProjectDir(root))
		if err := cfg.Load(); err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
	}
	if len(opts.Overrides) > 0 {
		cfg.Apply(opts.Overrides)
	}

	settings, err := cfg.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	logging.Setup(logging.Options{
		Level: settings.Logging.Level,
		File:  settings.Logging.File,
	})

	tools, err := toolchain.ResolveTools(settings.Tools.Search, settings.Tools.Analyze)
	if err != nil {
		return nil, err
	}

	orch, err := NewOrchestrator(Options{
		Settings: settings,
		Host:     opts.Host,
		Tools:    tools,
		Dir:      opts.Dir,
	})
	if err != nil {
		return nil, err
	}

	if err := orch.register(); err != nil {
		return nil, err
	}

	if settings.AutoSetup {
		orch.greet(ctx)
	}

	return orch, nil
}

// register installs the commands and key bindings on the host.
func (o *Orchestrator) register() error {
	if err := o.hostctx.Validate(); err != nil {
		return err
	}

	commands := []host.Command{
		{Name: cmdSearch, Description: "Search the project index", Handler: o.searchCommand},
		{Name: cmdAnalyze, Description: "Analyze code with the configured provider", Handler: o.analyzeCommand},
		{Name: cmdStatus, Description: "Show project readiness", Handler: o.statusCommand},
	}
	for _, cmd := range commands {
		if err := o.hostctx.Command.Register(cmd); err != nil {
			return fmt.Errorf("register %s: %w", cmd.Name, err)
		}
	}

	modes := []string{host.ModeNormal, host.ModeVisual}
	bindings := []host.Binding{
		{Modes: modes, Keys: o.settings.Keymaps.Search, Description: "Search selection or word", Handler: o.searchKey},
		{Modes: modes, Keys: o.settings.Keymaps.Analyze, Description: "Analyze selection or word", Handler: o.analyzeKey},
	}
	for _, binding := range bindings {
		if err := o.hostctx.Keymap.Bind(binding); err != nil {
			return fmt.Errorf("bind %s: %w", binding.Keys, err)
		}
	}

	return nil
}

// Teardown removes the registered commands and key bindings and cancels
// outstanding jobs. Safe on a partially composed host.
func (o *Orchestrator) Teardown() {
	o.runner.CancelAll()

	if o.hostctx.Command != nil {
		for _, name := range []string{cmdSearch, cmdAnalyze, cmdStatus} {
			_ = o.hostctx.Command.Unregister(name)
		}
	}

	if o.hostctx.Keymap != nil {
		modes := []string{host.ModeNormal, host.ModeVisual}
		_ = o.hostctx.Keymap.Unbind(modes, o.settings.Keymaps.Search)
		_ = o.hostctx.Keymap.Unbind(modes, o.settings.Keymaps.Analyze)
	}
}

// greet shows the readiness line once at setup time.
func (o *Orchestrator) greet(ctx context.Context) {
	switch o.prober.Probe(ctx, o.Root()) {
	case project.StateReady:
		o.notify("CodeSeek ready.", host.NotificationInfo)
	case project.StateUnindexed:
		o.notify("CodeSeek: project not indexed. Run 'cseek-index' to enable search.", host.NotificationWarning)
	default:
		o.notify("CodeSeek: project not initialized. Run 'cseek-init' to get started.", host.NotificationWarning)
	}
}

func (o *Orchestrator) searchCommand(args []string) error {
	_, err := o.Search(context.Background(), strings.Join(args, " "))
	return err
}

func (o *Orchestrator) analyzeCommand(args []string) error {
	_, err := o.Analyze(context.Background(), strings.Join(args, " "))
	return err
}

func (o *Orchestrator) statusCommand([]string) error {
	o.Status(context.Background())
	return nil
}

func (o *Orchestrator) searchKey() {
	_, _ = o.Search(context.Background(), o.selectionOrWord())
}

func (o *Orchestrator) analyzeKey() {
	_, _ = o.Analyze(context.Background(), o.selectionOrWord())
}
