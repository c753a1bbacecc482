// Package logger provides levelled logging for the ragchat CLI.
// Debug and info messages are printed only when verbose mode is enabled
// via the --verbose flag; warnings and errors are always printed.
//
// A Logger is an explicit value injected into each component so tests
// can capture or silence output without touching process-wide state.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes levelled messages to a single output writer.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// New creates a logger writing to out. If out is nil, os.Stderr is used.
func New(out io.Writer, verbose bool) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{out: out, verbose: verbose}
}

// Nop returns a logger that discards everything. Useful for tests.
func Nop() *Logger {
	return &Logger{out: io.Discard}
}

// SetVerbose enables or disables debug and info output.
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbose {
		fmt.Fprintf(l.out, "[DEBUG] "+format+"\n", args...)
	}
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbose {
		fmt.Fprintf(l.out, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[WARN] "+format+"\n", args...)
}

// Error prints an error message.
func (l *Logger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[ERROR] "+format+"\n", args...)
}
