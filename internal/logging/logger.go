// Package logging provides config-driven categorized file-based logging for fibcalc.
// Logs are written to .fib/logs/ with separate files per category.
// Logging is controlled by logging.debug_mode in .fib/config.yaml - when false, no logs are written.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fibcalc/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Boot/initialization
	CategoryCompute Category = "compute" // Term evaluation and verification
	CategoryStore   Category = "store"   // SQLite term cache
	CategoryBatch   Category = "batch"   // Batch runner
	CategoryWatch   Category = "watch"   // File watcher
)

// Logger is a category logger backed by a zap.SugaredLogger.
// A Logger for a disabled category discards everything.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	cfg       config.LoggingConfig
	cfgMu     sync.RWMutex
	nop       = zap.NewNop().Sugar()
)

// Initialize sets up the logging directory for a workspace.
// Should be called once at startup.
func Initialize(workspace string, lc config.LoggingConfig) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	CloseAll()

	cfgMu.Lock()
	cfg = lc
	logsDir = filepath.Join(workspace, config.DirName, "logs")
	cfgMu.Unlock()

	// Only create logs directory if debug mode is enabled
	if !lc.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== fibcalc logging initialized ===")
	boot.Info("Workspace: %s", workspace)
	boot.Info("Log level: %s", lc.Level)
	return nil
}

// IsDebugMode returns whether file logging is enabled
func IsDebugMode() bool {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category, sugar: nop}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	cfgMu.RLock()
	dir, lc := logsDir, cfg
	cfgMu.RUnlock()

	// Date prefix for easy rotation
	filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	logPath := filepath.Join(dir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category, sugar: nop}
	}

	core := zapcore.NewCore(newEncoder(lc.Format), zapcore.AddSync(file), parseLevel(lc.Level))
	l := &Logger{
		category: category,
		file:     file,
		sugar:    zap.New(core).Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// With returns a child logger carrying structured key/value context.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// CloseAll flushes and closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		_ = l.sugar.Sync()
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// NewConsole builds the operator-facing console logger used by the CLI.
func NewConsole(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return zc.Build()
}

// =============================================================================
// CONVENIENCE FUNCTIONS - no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// Compute logs to the compute category
func Compute(format string, args ...interface{}) { Get(CategoryCompute).Info(format, args...) }

// ComputeDebug logs debug to the compute category
func ComputeDebug(format string, args ...interface{}) { Get(CategoryCompute).Debug(format, args...) }

// Store logs to the store category
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }

// Batch logs to the batch category
func Batch(format string, args ...interface{}) { Get(CategoryBatch).Info(format, args...) }

// BatchDebug logs debug to the batch category
func BatchDebug(format string, args ...interface{}) { Get(CategoryBatch).Debug(format, args...) }

// Watch logs to the watch category
func Watch(format string, args ...interface{}) { Get(CategoryWatch).Info(format, args...) }

// WatchDebug logs debug to the watch category
func WatchDebug(format string, args ...interface{}) { Get(CategoryWatch).Debug(format, args...) }
