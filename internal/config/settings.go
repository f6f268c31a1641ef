package config

import (
	"errors"
	"time"
)

// Settings is the frozen configuration handed to every operation.
// It is a plain value; copies are independent and never mutated after
// Snapshot returns.
type Settings struct {
	// Provider names the external AI backend used for analysis.
	Provider string

	// Limit caps the number of results per invocation.
	Limit int

	// AutoSetup greets with a readiness status line at setup time.
	AutoSetup bool

	// MarkerDir is the project-local directory signaling initialization.
	MarkerDir string

	// ProbeTimeout bounds the readiness probe subprocess.
	ProbeTimeout time.Duration

	// Keymaps holds the two key bindings.
	Keymaps Keymaps

	// Tools names the external binaries.
	Tools Tools

	// History configures the per-project query log.
	History HistorySettings

	// Logging configures the operator log.
	Logging LoggingSettings
}

// Keymaps holds the search and analyze key bindings.
type Keymaps struct {
	Search  string
	Analyze string
}

// Tools names the external search and analysis binaries.
type Tools struct {
	Search  string
	Analyze string
}

// HistorySettings configures the per-project query log.
type HistorySettings struct {
	Enabled    bool
	MaxEntries int
}

// LoggingSettings configures the operator log.
type LoggingSettings struct {
	Level string
	File  string
}

// Snapshot freezes the merged configuration into a Settings value.
// Missing keys fall back to zero values; type mismatches are errors.
func (c *Config) Snapshot() (Settings, error) {
	var s Settings
	var timeoutMS int

	reads := []func() error{
		func() error { return getStr(c, "provider", &s.Provider) },
		func() error { return getInt(c, "limit", &s.Limit) },
		func() error { return getBool(c, "auto_setup", &s.AutoSetup) },
		func() error { return getStr(c, "marker_dir", &s.MarkerDir) },
		func() error { return getInt(c, "probe_timeout_ms", &timeoutMS) },
		func() error { return getStr(c, "keymaps.search", &s.Keymaps.Search) },
		func() error { return getStr(c, "keymaps.analyze", &s.Keymaps.Analyze) },
		func() error { return getStr(c, "tools.search", &s.Tools.Search) },
		func() error { return getStr(c, "tools.analyze", &s.Tools.Analyze) },
		func() error { return getBool(c, "history.enabled", &s.History.Enabled) },
		func() error { return getInt(c, "history.max_entries", &s.History.MaxEntries) },
		func() error { return getStr(c, "logging.level", &s.Logging.Level) },
		func() error { return getStr(c, "logging.file", &s.Logging.File) },
	}

	for _, read := range reads {
		if err := read(); err != nil {
			return Settings{}, err
		}
	}

	s.ProbeTimeout = time.Duration(timeoutMS) * time.Millisecond
	return s, nil
}

// getStr reads a string setting, leaving dst untouched when the key is absent.
func getStr(c *Config, path string, dst *string) error {
	v, err := c.GetString(path)
	if errors.Is(err, ErrSettingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// getInt reads an int setting, leaving dst untouched when the key is absent.
func getInt(c *Config, path string, dst *int) error {
	v, err := c.GetInt(path)
	if errors.Is(err, ErrSettingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// getBool reads a bool setting, leaving dst untouched when the key is absent.
func getBool(c *Config, path string, dst *bool) error {
	v, err := c.GetBool(path)
	if errors.Is(err, ErrSettingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
