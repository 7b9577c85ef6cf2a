// Package debug provides structured, component-tagged debug logging that
// is silent unless explicitly enabled. It never writes to stdout/stderr by
// default so it cannot interfere with csv/text match output on stdout.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// EnableDebug can be set at build time: -ldflags "-X .../debug.EnableDebug=true"
var EnableDebug = "false"

var (
	mu     sync.Mutex
	output io.Writer
)

// SetOutput sets the writer debug output goes to. Pass nil to disable.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// IsEnabled reports whether debug logging is currently active.
func IsEnabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("SSDC_DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Log writes a component-tagged debug line, e.g. Log("INDEX", "inserted id=%d", id).
func Log(component, format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// LogIndexing logs n-gram index activity.
func LogIndexing(format string, args ...interface{}) { Log("INDEX", format, args...) }

// LogMatch logs match-engine activity.
func LogMatch(format string, args ...interface{}) { Log("MATCH", format, args...) }

// LogCluster logs cluster-manager activity.
func LogCluster(format string, args ...interface{}) { Log("CLUSTER", format, args...) }

// LogLoad logs corpus-loader activity.
func LogLoad(format string, args ...interface{}) { Log("LOAD", format, args...) }
