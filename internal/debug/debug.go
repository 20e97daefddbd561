// Package debug provides component-scoped debug logging.
//
// The language server speaks its protocol over stdio, so nothing here may
// ever write to stdout. Output goes to a configured writer (usually a file
// under the temp dir) and only when debug mode is enabled.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug can be overridden at build time:
// go build -ldflags "-X .../internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	debugMutex  sync.Mutex
	debugOutput io.Writer
	debugFile   *os.File
)

// SetOutput sets a custom writer for debug output. Pass nil to disable.
func SetOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitLogFile initializes debug logging to a timestamped file under the temp
// dir and returns its path. Call CloseLogFile when done.
func InitLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "matlabls-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", time.Now().Format("2006-01-02T150405")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseLogFile closes the debug log file if one is open.
func CloseLogFile() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// Enabled reports whether debug logging is active.
func Enabled() bool {
	if EnableDebug == "true" {
		return true
	}
	return os.Getenv("MATLABLS_DEBUG") == "1" || os.Getenv("MATLABLS_DEBUG") == "true"
}

func writer() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Log writes a debug line scoped to a component name.
func Log(component, format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// LogIndexing logs indexing operations.
func LogIndexing(format string, args ...interface{}) {
	Log("INDEX", format, args...)
}

// LogEngine logs engine collaborator traffic.
func LogEngine(format string, args ...interface{}) {
	Log("ENGINE", format, args...)
}

// LogSearch logs symbol search operations.
func LogSearch(format string, args ...interface{}) {
	Log("SEARCH", format, args...)
}

// LogLSP logs protocol-boundary activity.
func LogLSP(format string, args ...interface{}) {
	Log("LSP", format, args...)
}
