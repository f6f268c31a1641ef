// Package config provides the configuration system for codeseek.
//
// The config package manages loading and merging the plugin's settings
// from defaults, the user config file, a project-local file, environment
// variables, and host-supplied setup overrides, then freezing the result
// into an immutable Settings value handed to every operation.
//
// # Architecture
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  5. Setup Overrides         │  ← Highest priority (host setup call)
//	├─────────────────────────────┤
//	│  4. Environment Variables   │  ← CSEEK_*
//	├─────────────────────────────┤
//	│  3. Project Settings        │  ← <project>/.codeseek.toml
//	├─────────────────────────────┤
//	│  2. User Settings           │  ← ~/.config/codeseek/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: Configuration file loading (TOML, environment variables)
//   - layer: Layer management and merging strategies
//
// # Basic Usage
//
//	cfg := config.New()
//	if err := cfg.Load(); err != nil {
//	    return err
//	}
//	cfg.Apply(hostOverrides)
//
//	settings, err := cfg.Snapshot()
//	if err != nil {
//	    return err
//	}
//	// settings is immutable from here on
//
// # Configuration File
//
//	# ~/.config/codeseek/config.toml
//	provider = "openai"
//	limit = 10
//
//	[keymaps]
//	search = "<leader>cs"
//	analyze = "<leader>ca"
//
//	[tools]
//	search = "cseek"
//	analyze = "cseek-analyze"
//
// # Error Handling
//
//   - ErrSettingNotFound: Setting path doesn't exist
//   - ErrTypeMismatch: Value type doesn't match expected type
//   - ErrFileNotFound: Configuration file doesn't exist
package config
