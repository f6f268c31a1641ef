// Package logging provides the shared arbor logger for codeseek.
//
// Notifications are the user-facing surface; the logger is the operator
// surface. Editor hosts usually capture stderr, so the console writer is
// always attached and a file writer is added only when a path is configured.
package logging

import (
	"sync"

	"github.com/ternarybob/arbor"
	arborcommon "github.com/ternarybob/arbor/common"
	"github.com/ternarybob/arbor/models"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// Options configures the global logger.
type Options struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string

	// File, when non-empty, adds a rotating file writer at this path.
	File string
}

// GetLogger returns the global logger instance.
// If Setup has not been called yet, a console fallback is installed.
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	// Double-check after acquiring write lock
	if globalLogger == nil {
		globalLogger = arbor.NewLogger().
			WithConsoleWriter(writerConfig(models.LogWriterTypeConsole, "")).
			WithLevelFromString("warn")
	}
	return globalLogger
}

// InitLogger stores the provided logger as the global singleton instance.
func InitLogger(logger arbor.ILogger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	globalLogger = logger
}

// Setup configures and installs the global logger.
func Setup(opts Options) arbor.ILogger {
	logger := arbor.NewLogger().
		WithConsoleWriter(writerConfig(models.LogWriterTypeConsole, ""))

	if opts.File != "" {
		logger = logger.WithFileWriter(writerConfig(models.LogWriterTypeFile, opts.File))
	}

	level := opts.Level
	if level == "" {
		level = "info"
	}
	logger = logger.WithLevelFromString(level)

	InitLogger(logger)
	return logger
}

// Stop flushes buffered log writers. Safe to call multiple times.
func Stop() {
	arborcommon.Stop()
}

// writerConfig builds a writer configuration with the plugin's defaults.
func writerConfig(writerType models.LogWriterType, filename string) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       writerType,
		FileName:   filename,
		TimeFormat: "15:04:05.000",
		OutputType: models.OutputFormatLogfmt,
		MaxSize:    10 * 1024 * 1024,
		MaxBackups: 3,
	}
}
