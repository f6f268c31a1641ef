package project

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dshills/codeseek/internal/logging"
	"github.com/dshills/codeseek/internal/toolchain"
	"github.com/ternarybob/arbor"
	"github.com/tidwall/gjson"
)

const (
	// probeQuery is the minimal query sent to test index readiness.
	probeQuery = "probe"

	// probeLimit keeps the probe reply as small as possible.
	probeLimit = 1

	// notIndexedSentinel is the message the toolchain reports for a
	// project whose index has not been built.
	notIndexedSentinel = "Project not indexed"
)

// ProberConfig configures readiness probing.
type ProberConfig struct {
	// MarkerDir is the directory name whose presence marks an
	// initialized project, relative to the project root.
	MarkerDir string

	// Timeout bounds a single probe.
	Timeout time.Duration
}

// DefaultProberConfig returns the default probe configuration.
func DefaultProberConfig() ProberConfig {
	return ProberConfig{
		MarkerDir: ".cseek",
		Timeout:   4 * time.Second,
	}
}

// Prober determines project readiness by asking the toolchain.
type Prober struct {
	runner *toolchain.Runner
	tools  *toolchain.Tools
	config ProberConfig
	log    arbor.ILogger
}

// NewProber creates a prober that dispatches through the given runner.
func NewProber(runner *toolchain.Runner, tools *toolchain.Tools, config ProberConfig) *Prober {
	if config.MarkerDir == "" {
		config.MarkerDir = ".cseek"
	}
	if config.Timeout <= 0 {
		config.Timeout = 4 * time.Second
	}

	return &Prober{
		runner: runner,
		tools:  tools,
		config: config,
		log:    logging.GetLogger(),
	}
}

// MarkerPath returns the marker directory path for a root.
func (p *Prober) MarkerPath(root string) string {
	return filepath.Join(root, p.config.MarkerDir)
}

// MarkerPresent reports whether the marker directory exists under root.
func (p *Prober) MarkerPresent(root string) bool {
	info, err := os.Stat(p.MarkerPath(root))
	return err == nil && info.IsDir()
}

// Probe determines the current state of the project at root.
//
// The state is computed fresh on every call. A missing marker directory
// short-circuits without spawning anything. Otherwise a minimal query is
// dispatched and its JSON reply is inspected: a reported error or a
// reply that cannot be parsed means the index is not usable, so the
// project counts as unindexed rather than failing the calling command.
func (p *Prober) Probe(ctx context.Context, root string) State {
	if !p.MarkerPresent(root) {
		return StateUninitialized
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	job, err := p.runner.Run(probeCtx, toolchain.Request{
		Tool: p.tools.Search,
		Args: []string{probeQuery, root, strconv.Itoa(probeLimit), "json"},
		Dir:  root,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("root", root).Msg("readiness probe could not start")
		return StateUnindexed
	}

	if err := job.Wait(probeCtx); err != nil {
		job.Cancel()
		p.log.Warn().Err(err).Str("root", root).Msg("readiness probe timed out")
		return StateUnindexed
	}

	return classifyReply(job, p.log, root)
}

// classifyReply maps a finished probe job to a project state.
func classifyReply(job *toolchain.Job, log arbor.ILogger, root string) State {
	out := job.Stdout()

	if msg := gjson.Get(out, "error"); msg.Exists() && msg.String() != "" {
		if msg.String() != notIndexedSentinel {
			log.Debug().Str("root", root).Str("error", msg.String()).Msg("probe reported error")
		}
		return StateUnindexed
	}

	if job.State != toolchain.JobStateSucceeded || !gjson.Valid(out) {
		log.Debug().Str("root", root).Str("state", string(job.State)).Msg("probe reply unusable")
		return StateUnindexed
	}

	return StateReady
}
