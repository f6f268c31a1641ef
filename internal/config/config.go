package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/codeseek/internal/config/layer"
	"github.com/dshills/codeseek/internal/config/loader"
)

// Config provides unified access to the codeseek configuration system.
// Values from defaults, the user config file, a project config file,
// environment variables, and host-supplied setup overrides are merged
// by layer priority. After setup the merged result is frozen into a
// Settings value; Config itself is only used during composition.
type Config struct {
	mu sync.RWMutex

	// Layer manager for merged configuration
	layers *layer.Manager

	// Configuration paths
	userConfigDir string
	projectDir    string

	// envPrefix selects which environment variables are loaded.
	envPrefix string
}

// Option configures a Config instance.
type Option func(*Config)

// WithUserConfigDir sets the user configuration directory.
func WithUserConfigDir(dir string) Option {
	return func(c *Config) {
		c.userConfigDir = dir
	}
}

// WithProjectDir sets the project directory to read local config from.
func WithProjectDir(dir string) Option {
	return func(c *Config) {
		c.projectDir = dir
	}
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// New creates a new Config instance with the given options.
func New(opts ...Option) *Config {
	c := &Config{
		layers:    layer.NewManager(),
		envPrefix: "CSEEK_",
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.userConfigDir == "" {
		c.userConfigDir = defaultUserConfigDir()
	}

	return c
}

// Load loads configuration from all sources in priority order.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadDefaults()

	if err := c.loadUserSettings(); err != nil && !os.IsNotExist(err) {
		return err
	}

	if c.projectDir != "" {
		if err := c.loadProjectSettings(); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return c.loadEnvironment()
}

// LoadFile merges an explicit configuration file over the current layers.
// Used by frontends that accept a --config flag.
func (c *Config) LoadFile(path string) error {
	data, err := loader.NewTOMLLoader(path).Load()
	if err != nil {
		return err
	}
	if data == nil {
		return ErrFileNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.layers.RemoveLayer("file")
	l := layer.NewLayerWithData("file", layer.SourceProject, layer.PriorityFile, data)
	l.Path = path
	c.layers.AddLayer(l)
	return nil
}

// Apply merges host-supplied overrides at the highest priority. Keys
// may be dotted paths ("keymaps.search") or nested maps; both expand to
// the same structure. Deep merge semantics: nested keys override
// independently.
func (c *Config) Apply(overrides map[string]any) {
	if len(overrides) == 0 {
		return
	}

	expanded := make(map[string]any, len(overrides))
	for path, value := range overrides {
		layer.SetByPath(expanded, path, value)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing := c.layers.GetLayer("override")
	if existing == nil {
		l := layer.NewLayerWithData("override", layer.SourceOverride, layer.PriorityOverride, expanded)
		c.layers.AddLayer(l)
		return
	}

	existing.Data = layer.DeepMerge(existing.Data, expanded)
	c.layers.Invalidate()
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	merged := c.layers.Merge()
	return layer.GetByPath(merged, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// Merged returns the fully merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.Merge()
}

// WhichLayer reports which layer provides the effective value for a path.
func (c *Config) WhichLayer(path string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.WhichLayer(path)
}

// loadDefaults loads the default configuration layer.
func (c *Config) loadDefaults() {
	defaults := defaultConfig()
	l := layer.NewLayerWithData("defaults", layer.SourceBuiltin, layer.PriorityBuiltin, defaults)
	c.layers.AddLayer(l)
}

// loadUserSettings loads user settings from the config directory.
func (c *Config) loadUserSettings() error {
	settingsPath := filepath.Join(c.userConfigDir, "config.toml")

	data, err := loader.NewTOMLLoader(settingsPath).Load()
	if err != nil {
		return err
	}
	if data == nil {
		return os.ErrNotExist
	}

	l := layer.NewLayerWithData("user", layer.SourceUserGlobal, layer.PriorityUserGlobal, data)
	l.Path = settingsPath
	c.layers.AddLayer(l)
	return nil
}

// loadProjectSettings loads project-local settings.
func (c *Config) loadProjectSettings() error {
	settingsPath := filepath.Join(c.projectDir, ".codeseek.toml")

	data, err := loader.NewTOMLLoader(settingsPath).Load()
	if err != nil {
		return err
	}
	if data == nil {
		return os.ErrNotExist
	}

	l := layer.NewLayerWithData("project", layer.SourceProject, layer.PriorityProject, data)
	l.Path = settingsPath
	c.layers.AddLayer(l)
	return nil
}

// loadEnvironment loads configuration from environment variables.
func (c *Config) loadEnvironment() error {
	envLoader := loader.NewEnvLoader(c.envPrefix)
	if c.envPrefix != "CSEEK_" {
		// Custom prefixes skip the stock CSEEK_* mappings entirely
		envLoader = loader.NewEnvLoaderWithMapping(c.envPrefix, nil)
	}

	data, err := envLoader.Load()
	if err != nil {
		return err
	}

	if len(data) > 0 {
		l := layer.NewLayerWithData("environment", layer.SourceEnv, layer.PriorityEnv, data)
		c.layers.AddLayer(l)
	}

	return nil
}

// defaultUserConfigDir returns the default user configuration directory.
func defaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codeseek")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "codeseek")
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"provider":         "openai",
		"limit":            10,
		"auto_setup":       true,
		"marker_dir":       ".cseek",
		"probe_timeout_ms": 4000,
		"keymaps": map[string]any{
			"search":  "<leader>cs",
			"analyze": "<leader>ca",
		},
		"tools": map[string]any{
			"search":  "cseek",
			"analyze": "cseek-analyze",
		},
		"history": map[string]any{
			"enabled":     true,
			"max_entries": 200,
		},
		"logging": map[string]any{
			"level": "info",
			"file":  "",
		},
	}
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
