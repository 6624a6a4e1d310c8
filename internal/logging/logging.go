// Package logging provides categorized zap logging for taskdeck. Logs are
// written to <workspace>/.taskdeck/logs/taskdeck.log when debug mode is on;
// otherwise logging is a silent no-op. Initialize is called once at startup
// with the workspace path.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem logger.
type Category string

const (
	CategoryBoot    Category = "boot"    // startup and wiring
	CategoryCommand Category = "command" // resolution, parsing, validation
	CategoryQuery   Category = "query"   // query evaluation
	CategoryStore   Category = "store"   // sqlite operations
	CategoryUI      Category = "ui"      // REPL and rendering
)

var (
	mu   sync.RWMutex
	root *zap.Logger = zap.NewNop()
)

// Initialize sets up the shared logger. In debug mode log lines go to a file
// under the workspace; with verbose they also go to stderr. Safe to call
// before any Get.
func Initialize(workspace string, debug, verbose bool) error {
	if !debug && !verbose {
		return nil // silent no-op in production mode
	}

	var cores []zapcore.Core
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if debug {
		logsDir := filepath.Join(workspace, ".taskdeck", "logs")
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(logsDir, "taskdeck.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(f),
			zapcore.DebugLevel,
		))
	}
	if verbose {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stderr),
			zapcore.DebugLevel,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...))

	mu.Lock()
	root = logger
	mu.Unlock()

	Get(CategoryBoot).Info("logging initialized",
		zap.String("workspace", workspace),
		zap.Bool("debug", debug))
	return nil
}

// Get returns the logger for a category.
func Get(c Category) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(string(c))
}

// Sync flushes buffered log entries. Called once at shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}
