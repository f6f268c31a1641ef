// Package luaapi exposes codeseek to hosts that embed Lua.
//
// A Module registers one global table, _cseek, with five functions:
// setup, search, analyze, status, and version. A script calls
// _cseek.setup(opts) once to load configuration and register the editor
// surface; search, analyze, and status raise until then. Operational
// failures after setup never raise; they surface as host notifications.
//
// Result routing runs on background goroutines. The host providers
// behind the Context must marshal their effects onto the editor's main
// thread themselves; gopher-lua states are not goroutine-safe and the
// Module never touches the LState outside a Lua call.
package luaapi

import (
	"context"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/codeseek/internal/config"
	"github.com/dshills/codeseek/internal/host"
	"github.com/dshills/codeseek/internal/workflow"
)

// Version is what _cseek.version() reports.
const Version = "0.1.0"

// Module bridges an embedded Lua state to the codeseek workflow.
// Construct with NewModule, install with Register, and release with
// Close when the host unloads the plugin.
type Module struct {
	hostctx *host.Context
	dir     string
	config  *config.Config

	mu   sync.Mutex
	orch *workflow.Orchestrator
}

// Options configures a Module.
type Options struct {
	// Host supplies the editor-side providers the workflow routes
	// through. Required; setup raises without one.
	Host *host.Context

	// Dir anchors project root resolution and configuration discovery.
	// Empty means the working directory.
	Dir string

	// Config, when non-nil, replaces the default load sequence during
	// setup. Useful for hosts that assemble configuration themselves.
	Config *config.Config
}

// NewModule creates a Lua module bound to the given host providers.
// Nothing runs until a script calls setup.
func NewModule(opts Options) *Module {
	return &Module{
		hostctx: opts.Host,
		dir:     opts.Dir,
		config:  opts.Config,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cseek"
}

// Register installs the _cseek global table into the Lua state.
func (m *Module) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "setup", L.NewFunction(m.setup))
	L.SetField(mod, "search", L.NewFunction(m.search))
	L.SetField(mod, "analyze", L.NewFunction(m.analyze))
	L.SetField(mod, "status", L.NewFunction(m.status))
	L.SetField(mod, "version", L.NewFunction(m.version))

	L.SetGlobal("_cseek", mod)
	return nil
}

// Orchestrator returns the active orchestrator, or nil before setup.
func (m *Module) Orchestrator() *workflow.Orchestrator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orch
}

// Close tears down the active orchestrator, unregistering commands and
// key bindings and canceling running jobs. Safe to call more than once.
// The Lua state itself is the caller's to close.
func (m *Module) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.orch != nil {
		m.orch.Teardown()
		m.orch = nil
	}
}

// setup(opts?) -> nil
// Loads configuration, registers editor commands and key bindings, and
// arms the query functions. opts is an optional table of configuration
// overrides, nested ({keymaps = {search = "<leader>zz"}}) or dotted
// ({["keymaps.search"] = "<leader>zz"}). Calling setup again tears down
// the previous registration first.
func (m *Module) setup(L *lua.LState) int {
	var overrides map[string]any
	if L.GetTop() >= 1 && L.Get(1) != lua.LNil {
		overrides = tableToMap(L.CheckTable(1))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.orch != nil {
		m.orch.Teardown()
		m.orch = nil
	}

	orch, err := workflow.Setup(context.Background(), workflow.SetupOptions{
		Host:      m.hostctx,
		Dir:       m.dir,
		Overrides: overrides,
		Config:    m.config,
	})
	if err != nil {
		L.RaiseError("setup: %v", err)
		return 0
	}

	m.orch = orch
	return 0
}

// search(query?) -> bool
// Dispatches a search; results land on the clipboard. With no query the
// user is prompted. Returns whether a job was dispatched. Failures
// surface as notifications, not Lua errors.
func (m *Module) search(L *lua.LState) int {
	query := L.OptString(1, "")

	orch := m.Orchestrator()
	if orch == nil {
		L.RaiseError("search: setup has not run")
		return 0
	}

	job, err := orch.Search(context.Background(), query)
	L.Push(lua.LBool(err == nil && job != nil))
	return 1
}

// analyze(query?) -> bool
// Dispatches an analysis; the result goes to the chat sink or the
// clipboard. With no query the user is prompted. Returns whether a job
// was dispatched. Failures surface as notifications, not Lua errors.
func (m *Module) analyze(L *lua.LState) int {
	query := L.OptString(1, "")

	orch := m.Orchestrator()
	if orch == nil {
		L.RaiseError("analyze: setup has not run")
		return 0
	}

	job, err := orch.Analyze(context.Background(), query)
	L.Push(lua.LBool(err == nil && job != nil))
	return 1
}

// status() -> table
// Probes the project and returns the readiness report with fields root,
// state, ready, marker_path, marker_present, provider, limit,
// search_tool, analyze_tool, and chat_connected. analyze_tool is the
// empty string when the analysis tool is unavailable.
func (m *Module) status(L *lua.LState) int {
	orch := m.Orchestrator()
	if orch == nil {
		L.RaiseError("status: setup has not run")
		return 0
	}

	report := orch.Status(context.Background())

	tbl := L.NewTable()
	L.SetField(tbl, "root", lua.LString(report.Root))
	L.SetField(tbl, "state", lua.LString(report.State.String()))
	L.SetField(tbl, "ready", lua.LBool(report.State.Ready()))
	L.SetField(tbl, "marker_path", lua.LString(report.MarkerPath))
	L.SetField(tbl, "marker_present", lua.LBool(report.MarkerPresent))
	L.SetField(tbl, "provider", lua.LString(report.Provider))
	L.SetField(tbl, "limit", lua.LNumber(report.Limit))
	L.SetField(tbl, "search_tool", lua.LString(report.SearchTool))
	L.SetField(tbl, "analyze_tool", lua.LString(report.AnalyzeTool))
	L.SetField(tbl, "chat_connected", lua.LBool(report.ChatConnected))

	L.Push(tbl)
	return 1
}

// version() -> string
// Returns the module version.
func (m *Module) version(L *lua.LState) int {
	L.Push(lua.LString(Version))
	return 1
}
