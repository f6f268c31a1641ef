package luaapi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/codeseek/internal/config"
	"github.com/dshills/codeseek/internal/host"
)

type note struct {
	message string
	level   host.NotificationLevel
}

type fakeUI struct {
	mu      sync.Mutex
	notes   []note
	input   string
	inputOK bool
	prompts []string
}

func (u *fakeUI) Notify(message string, level host.NotificationLevel) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.notes = append(u.notes, note{message: message, level: level})
	return nil
}

func (u *fakeUI) Input(prompt, defaultValue string) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.prompts = append(u.prompts, prompt)
	return u.input, u.inputOK
}

func (u *fakeUI) notifications() []note {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]note(nil), u.notes...)
}

func (u *fakeUI) promptLog() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.prompts...)
}

type memClipboard struct {
	mu     sync.Mutex
	writes []string
}

func (c *memClipboard) SetClipboard(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, text)
	return nil
}

func (c *memClipboard) text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.writes) == 0 {
		return ""
	}
	return c.writes[len(c.writes)-1]
}

type stubSelection struct{}

func (stubSelection) Selection() (string, bool) { return "", false }
func (stubSelection) CursorLine() (string, int) { return "", 0 }

type fakeCommands struct {
	mu   sync.Mutex
	cmds map[string]host.Command
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{cmds: make(map[string]host.Command)}
}

func (c *fakeCommands) Register(cmd host.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.cmds[cmd.Name]; exists {
		return fmt.Errorf("command %q already registered", cmd.Name)
	}
	c.cmds[cmd.Name] = cmd
	return nil
}

func (c *fakeCommands) Unregister(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cmds, name)
	return nil
}

func (c *fakeCommands) has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.cmds[name]
	return ok
}

func (c *fakeCommands) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cmds)
}

type fakeKeymaps struct {
	mu       sync.Mutex
	bindings []host.Binding
}

func (k *fakeKeymaps) Bind(b host.Binding) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.bindings = append(k.bindings, b)
	return nil
}

func (k *fakeKeymaps) Unbind(modes []string, keys string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	kept := k.bindings[:0]
	for _, b := range k.bindings {
		if b.Keys != keys {
			kept = append(kept, b)
		}
	}
	k.bindings = kept
	return nil
}

func (k *fakeKeymaps) keys() map[string]bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	keys := make(map[string]bool)
	for _, b := range k.bindings {
		keys[b.Keys] = true
	}
	return keys
}

func (k *fakeKeymaps) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.bindings)
}

type luaHost struct {
	ui       *fakeUI
	clip     *memClipboard
	commands *fakeCommands
	keymaps  *fakeKeymaps
	ctx      *host.Context
}

func newLuaHost() *luaHost {
	ui := &fakeUI{}
	clip := &memClipboard{}
	commands := newFakeCommands()
	keymaps := &fakeKeymaps{}
	return &luaHost{
		ui:       ui,
		clip:     clip,
		commands: commands,
		keymaps:  keymaps,
		ctx:      host.NewContext(ui, clip, stubSelection{}, commands, keymaps),
	}
}

// installSearchTool puts a fake cseek on PATH that answers probes with
// probeReply and runs textBody in text mode.
func installSearchTool(t *testing.T, probeReply, textBody string) string {
	t.Helper()
	bin := t.TempDir()
	script := fmt.Sprintf(
		"#!/bin/sh\nif [ \"$4\" = \"json\" ]; then printf '%s'; exit 0; fi\n%s\n",
		probeReply, textBody,
	)
	if err := os.WriteFile(filepath.Join(bin, "cseek"), []byte(script), 0o755); err != nil {
		t.Fatalf("install cseek: %v", err)
	}
	t.Setenv("PATH", bin)
	return bin
}

func installAnalyzeTool(t *testing.T, bin, body string) {
	t.Helper()
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(bin, "cseek-analyze"), []byte(script), 0o755); err != nil {
		t.Fatalf("install cseek-analyze: %v", err)
	}
}

func projectRoot(t *testing.T, withMarker bool) string {
	t.Helper()
	root := t.TempDir()
	if withMarker {
		if err := os.MkdirAll(filepath.Join(root, ".cseek"), 0o755); err != nil {
			t.Fatalf("create marker: %v", err)
		}
	}
	return root
}

func newTestConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	cfg := config.New(config.WithProjectDir(root), config.WithUserConfigDir(t.TempDir()))
	if err := cfg.Load(); err != nil {
		t.Fatalf("config load: %v", err)
	}
	return cfg
}

type luaHarness struct {
	L    *lua.LState
	mod  *Module
	host *luaHost
	root string
}

// newLuaHarness wires a registered module against fake host providers
// and a fake toolchain. searchBody is the shell fragment the search
// tool runs in text mode.
func newLuaHarness(t *testing.T, searchBody, analyzeBody string) *luaHarness {
	t.Helper()

	bin := installSearchTool(t, `{"results": []}`, searchBody)
	installAnalyzeTool(t, bin, analyzeBody)
	root := projectRoot(t, true)
	lh := newLuaHost()

	mod := NewModule(Options{
		Host:   lh.ctx,
		Dir:    root,
		Config: newTestConfig(t, root),
	})

	L := lua.NewState()
	t.Cleanup(func() {
		mod.Close()
		L.Close()
	})

	if err := mod.Register(L); err != nil {
		t.Fatalf("Register error = %v", err)
	}

	return &luaHarness{L: L, mod: mod, host: lh, root: root}
}

func (h *luaHarness) setup(t *testing.T, opts string) {
	t.Helper()
	if err := h.L.DoString("_cseek.setup(" + opts + ")"); err != nil {
		t.Fatalf("setup error = %v", err)
	}
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func TestModuleName(t *testing.T) {
	mod := NewModule(Options{})
	if mod.Name() != "cseek" {
		t.Errorf("Name() = %q, want %q", mod.Name(), "cseek")
	}
}

func TestRegister_InstallsFunctions(t *testing.T) {
	mod := NewModule(Options{})
	L := lua.NewState()
	defer L.Close()

	if err := mod.Register(L); err != nil {
		t.Fatalf("Register error = %v", err)
	}

	err := L.DoString(`
		assert(type(_cseek) == "table", "_cseek global")
		assert(type(_cseek.setup) == "function", "setup")
		assert(type(_cseek.search) == "function", "search")
		assert(type(_cseek.analyze) == "function", "analyze")
		assert(type(_cseek.status) == "function", "status")
		assert(type(_cseek.version) == "function", "version")
	`)
	if err != nil {
		t.Errorf("registered surface error = %v", err)
	}
}

func TestVersion(t *testing.T) {
	mod := NewModule(Options{})
	L := lua.NewState()
	defer L.Close()

	if err := mod.Register(L); err != nil {
		t.Fatalf("Register error = %v", err)
	}

	if err := L.DoString(`v = _cseek.version()`); err != nil {
		t.Fatalf("DoString error = %v", err)
	}

	if got := L.GetGlobal("v").String(); got != Version {
		t.Errorf("version() = %q, want %q", got, Version)
	}
}

func TestQueriesRaiseBeforeSetup(t *testing.T) {
	mod := NewModule(Options{})
	L := lua.NewState()
	defer L.Close()

	if err := mod.Register(L); err != nil {
		t.Fatalf("Register error = %v", err)
	}

	for _, call := range []string{
		`_cseek.search("x")`,
		`_cseek.analyze("x")`,
		`_cseek.status()`,
	} {
		err := L.DoString(call)
		if err == nil {
			t.Errorf("%s before setup should error", call)
			continue
		}
		if !strings.Contains(err.Error(), "setup has not run") {
			t.Errorf("%s error = %v, want mention of setup", call, err)
		}
	}
}

func TestSetup_RegistersEditorSurface(t *testing.T) {
	h := newLuaHarness(t, "exit 0", "exit 0")

	h.setup(t, `{auto_setup = false}`)

	for _, name := range []string{"CSeekSearch", "CSeekAnalyze", "CSeekStatus"} {
		if !h.host.commands.has(name) {
			t.Errorf("command %s not registered", name)
		}
	}
	if got := h.host.keymaps.size(); got != 2 {
		t.Errorf("bindings = %d, want 2", got)
	}
	if len(h.host.ui.notifications()) != 0 {
		t.Errorf("notifications = %v, want none with auto_setup off", h.host.ui.notifications())
	}
}

func TestSetup_AppliesOverrides(t *testing.T) {
	h := newLuaHarness(t, "exit 0", "exit 0")

	h.setup(t, `{auto_setup = false, limit = 3, ["keymaps.search"] = "<leader>zz"}`)

	orch := h.mod.Orchestrator()
	if orch == nil {
		t.Fatal("Orchestrator() = nil after setup")
	}
	if got := orch.Settings().Limit; got != 3 {
		t.Errorf("Limit = %d, want 3", got)
	}

	keys := h.host.keymaps.keys()
	if !keys["<leader>zz"] {
		t.Errorf("bindings = %v, want the overridden search key", keys)
	}
	if keys["<leader>cs"] {
		t.Error("default search key still bound after override")
	}
}

func TestSetup_NestedOverrideTable(t *testing.T) {
	h := newLuaHarness(t, "exit 0", "exit 0")

	h.setup(t, `{auto_setup = false, keymaps = {search = "<leader>zz"}}`)

	keys := h.host.keymaps.keys()
	if !keys["<leader>zz"] {
		t.Errorf("bindings = %v, want the nested override key", keys)
	}
}

func TestSetup_GreetsWhenReady(t *testing.T) {
	h := newLuaHarness(t, "exit 0", "exit 0")

	h.setup(t, "")

	notes := h.host.ui.notifications()
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes))
	}
	if notes[0].message != "CodeSeek ready." {
		t.Errorf("greeting = %q, want %q", notes[0].message, "CodeSeek ready.")
	}
	if notes[0].level != host.NotificationInfo {
		t.Errorf("greeting level = %q, want info", notes[0].level)
	}
}

func TestSetup_MissingToolRaises(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	root := projectRoot(t, true)
	lh := newLuaHost()

	mod := NewModule(Options{
		Host:   lh.ctx,
		Dir:    root,
		Config: newTestConfig(t, root),
	})

	L := lua.NewState()
	defer L.Close()

	if err := mod.Register(L); err != nil {
		t.Fatalf("Register error = %v", err)
	}

	err := L.DoString(`_cseek.setup({})`)
	if err == nil {
		t.Fatal("setup without the search tool should error")
	}
	if !strings.Contains(err.Error(), "setup:") {
		t.Errorf("setup error = %v, want setup prefix", err)
	}
	if mod.Orchestrator() != nil {
		t.Error("Orchestrator() should stay nil after failed setup")
	}
}

func TestSetupAgain_ReplacesRegistration(t *testing.T) {
	h := newLuaHarness(t, "exit 0", "exit 0")

	h.setup(t, `{auto_setup = false}`)
	h.setup(t, `{auto_setup = false, ["keymaps.search"] = "<leader>zz"}`)

	if got := h.host.commands.size(); got != 3 {
		t.Errorf("commands after re-setup = %d, want 3", got)
	}
	keys := h.host.keymaps.keys()
	if !keys["<leader>zz"] {
		t.Errorf("bindings = %v, want the second setup's search key", keys)
	}
	if keys["<leader>cs"] {
		t.Error("first setup's search key still bound")
	}
}

func TestSearch_CopiesResultsToClipboard(t *testing.T) {
	h := newLuaHarness(t, `printf 'src/auth.go:12: handleLogin'`, "exit 0")
	h.setup(t, `{auto_setup = false}`)

	if err := h.L.DoString(`ok = _cseek.search("auth login")`); err != nil {
		t.Fatalf("search error = %v", err)
	}
	if got := h.L.GetGlobal("ok"); got != lua.LTrue {
		t.Errorf("search() = %v, want true", got)
	}

	waitFor(t, "clipboard write", func() bool {
		return h.host.clip.text() == "src/auth.go:12: handleLogin"
	})
	waitFor(t, "success notification", func() bool {
		for _, n := range h.host.ui.notifications() {
			if n.level == host.NotificationSuccess {
				return true
			}
		}
		return false
	})
}

func TestSearch_PromptsWhenQueryOmitted(t *testing.T) {
	h := newLuaHarness(t, `printf 'results'`, "exit 0")
	h.host.ui.input = "token refresh"
	h.host.ui.inputOK = true
	h.setup(t, `{auto_setup = false}`)

	if err := h.L.DoString(`ok = _cseek.search()`); err != nil {
		t.Fatalf("search error = %v", err)
	}
	if got := h.L.GetGlobal("ok"); got != lua.LTrue {
		t.Errorf("search() = %v, want true", got)
	}

	prompts := h.host.ui.promptLog()
	if len(prompts) != 1 || prompts[0] != "Search: " {
		t.Errorf("prompts = %v, want one search prompt", prompts)
	}

	waitFor(t, "clipboard write", func() bool {
		return h.host.clip.text() == "results"
	})
}

func TestSearch_NotReadyReturnsFalse(t *testing.T) {
	bin := installSearchTool(t, `{"error": "Project not indexed"}`, "exit 0")
	installAnalyzeTool(t, bin, "exit 0")
	root := projectRoot(t, true)
	lh := newLuaHost()

	mod := NewModule(Options{
		Host:   lh.ctx,
		Dir:    root,
		Config: newTestConfig(t, root),
	})

	L := lua.NewState()
	t.Cleanup(func() {
		mod.Close()
		L.Close()
	})

	if err := mod.Register(L); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if err := L.DoString(`_cseek.setup({auto_setup = false})`); err != nil {
		t.Fatalf("setup error = %v", err)
	}

	if err := L.DoString(`ok = _cseek.search("anything")`); err != nil {
		t.Fatalf("search error = %v", err)
	}
	if got := L.GetGlobal("ok"); got != lua.LFalse {
		t.Errorf("search() = %v, want false when not indexed", got)
	}

	notes := lh.ui.notifications()
	if len(notes) != 1 || notes[0].level != host.NotificationWarning {
		t.Fatalf("notifications = %v, want one warning", notes)
	}
	if !strings.Contains(notes[0].message, "cseek-index") {
		t.Errorf("warning = %q, want the index remediation", notes[0].message)
	}
}

func TestAnalyze_CopiesResultToClipboard(t *testing.T) {
	h := newLuaHarness(t, "exit 0", `printf 'Auth flow explained.'`)
	h.setup(t, `{auto_setup = false}`)

	if err := h.L.DoString(`ok = _cseek.analyze("explain auth")`); err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	if got := h.L.GetGlobal("ok"); got != lua.LTrue {
		t.Errorf("analyze() = %v, want true", got)
	}

	waitFor(t, "clipboard write", func() bool {
		return h.host.clip.text() == "Auth flow explained."
	})
}

func TestStatus_ReturnsReport(t *testing.T) {
	h := newLuaHarness(t, "exit 0", "exit 0")
	h.setup(t, `{auto_setup = false}`)

	if err := h.L.DoString(`
		s = _cseek.status()
		assert(s.ready == true, "ready")
		assert(s.state == "ready", "state")
		assert(s.marker_present == true, "marker_present")
		assert(s.provider == "openai", "provider")
		assert(s.limit == 10, "limit")
		assert(s.analyze_tool ~= "", "analyze_tool")
		assert(s.chat_connected == false, "chat_connected")
	`); err != nil {
		t.Fatalf("status error = %v", err)
	}

	tbl, ok := h.L.GetGlobal("s").(*lua.LTable)
	if !ok {
		t.Fatal("status() did not return a table")
	}
	if got := h.L.GetField(tbl, "root").String(); got != h.root {
		t.Errorf("root = %q, want %q", got, h.root)
	}

	var found bool
	for _, n := range h.host.ui.notifications() {
		if strings.Contains(n.message, "CodeSeek status") {
			found = true
		}
	}
	if !found {
		t.Error("status did not notify the report")
	}
}

func TestStatus_Uninitialized(t *testing.T) {
	installSearchTool(t, `{"results": []}`, "exit 0")
	root := projectRoot(t, false)
	lh := newLuaHost()

	mod := NewModule(Options{
		Host:   lh.ctx,
		Dir:    root,
		Config: newTestConfig(t, root),
	})

	L := lua.NewState()
	t.Cleanup(func() {
		mod.Close()
		L.Close()
	})

	if err := mod.Register(L); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if err := L.DoString(`_cseek.setup({auto_setup = false})`); err != nil {
		t.Fatalf("setup error = %v", err)
	}

	if err := L.DoString(`
		s = _cseek.status()
		assert(s.ready == false, "ready")
		assert(s.state == "uninitialized", "state")
		assert(s.marker_present == false, "marker_present")
	`); err != nil {
		t.Fatalf("status error = %v", err)
	}
}

func TestClose_UnregistersSurface(t *testing.T) {
	h := newLuaHarness(t, "exit 0", "exit 0")
	h.setup(t, `{auto_setup = false}`)

	h.mod.Close()

	if got := h.host.commands.size(); got != 0 {
		t.Errorf("commands after Close = %d, want 0", got)
	}
	if got := h.host.keymaps.size(); got != 0 {
		t.Errorf("bindings after Close = %d, want 0", got)
	}
	if h.mod.Orchestrator() != nil {
		t.Error("Orchestrator() should be nil after Close")
	}

	// Closing again is a no-op and the query functions raise again.
	h.mod.Close()
	if err := h.L.DoString(`_cseek.search("x")`); err == nil {
		t.Error("search after Close should error")
	}
}
