// Package rtlog is the runtime's structured logging seam: a narrow
// interface plus a package-level global that can be swapped at process
// startup, backed by github.com/joeycumines/logiface and its stumpy
// JSON writer.
package rtlog

import (
	"os"
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Event is the concrete logiface event type used throughout the
// runtime.
type Event = stumpy.Event

// Logger is the handle every core package logs through.
type Logger = *logiface.Logger[*Event]

var (
	mu      sync.RWMutex
	current Logger = New(logiface.LevelWarning, os.Stderr)
)

// New builds a Logger writing stumpy-formatted JSON lines to w, at or
// above the given level.
func New(level logiface.Level, w *os.File) Logger {
	return logiface.New[*Event](
		logiface.WithLevel[*Event](level),
		stumpy.WithStumpy(stumpy.WithWriter(w)),
	)
}

// SetDefault installs the process-wide default Logger.
func SetDefault(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// Default returns the process-wide default Logger.
func Default() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
