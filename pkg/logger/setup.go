package logger

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
)

var (
	fallbackMu sync.RWMutex
	fallback   Logger
)

func defaultLogger() Logger {
	fallbackMu.RLock()
	l := fallback
	fallbackMu.RUnlock()
	if l != nil {
		return l
	}
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	if fallback == nil {
		fallback = NewLogger(nil)
	}
	return fallback
}

// SetupLogger builds the process logger from CLI flags and installs it as the default.
func SetupLogger(logLevel string, logJSON, logSource bool) Logger {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(logLevel)
	cfg.JSON = logJSON
	cfg.AddSource = logSource
	l := NewLogger(cfg)
	fallbackMu.Lock()
	fallback = l
	fallbackMu.Unlock()
	return l
}

func GetLoggerConfig(cmd *cobra.Command) (string, bool, bool, error) {
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-json flag: %w", err)
	}
	logSource, err := cmd.Flags().GetBool("log-source")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-source flag: %w", err)
	}
	return logLevel, logJSON, logSource, nil
}
