// Package logging provides leveled log helpers for the scene engine.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// DebugEnabled controls whether Debug() produces output.
// Set via --debug flag or DEBUG=1 environment variable.
var DebugEnabled bool

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}

// Info logs an informational message.
func Info(format string, args ...any) {
	log.Printf("INFO: "+format, args...)
}

// Warn logs a recoverable problem.
func Warn(format string, args ...any) {
	log.Printf("WARN: "+format, args...)
}

// Error logs a failure.
func Error(format string, args ...any) {
	log.Printf("ERROR: "+format, args...)
}

// ToFile redirects the standard logger to path, appending. The returned
// closer restores stderr and closes the file.
func ToFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	log.SetOutput(f)
	return closerFunc(func() error {
		log.SetOutput(os.Stderr)
		return f.Close()
	}), nil
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }
