package scheduler

import "sync"

// Global and Current give global and thread-local-style scheduler
// access: Global is a process-lifetime singleton initialised through
// sync.Once, and Current is a mutex-guarded override slot that falls
// back to Global while empty.
//
// Go has no public API for "the current OS thread's local storage";
// a goroutine is not pinned to an OS thread unless the caller has
// called runtime.LockOSThread. Current()
// therefore approximates thread-local access with a single
// process-wide override slot rather than a thread-keyed registry we
// have no reliable way to index: callers that need genuine per-thread
// isolation must call runtime.LockOSThread and install their own
// Scheduler via SetCurrent from that locked thread.
var (
	globalOnce  sync.Once
	globalSched *Scheduler

	currentMu    sync.RWMutex
	currentSched *Scheduler
)

// Global returns the process-wide Scheduler used for cross-thread
// coordination via FFI.
func Global() *Scheduler {
	globalOnce.Do(func() { globalSched = New() })
	return globalSched
}

// Current returns the Scheduler installed via SetCurrent, or Global()
// if none has been installed.
func Current() *Scheduler {
	currentMu.RLock()
	s := currentSched
	currentMu.RUnlock()
	if s != nil {
		return s
	}
	return Global()
}

// SetCurrent installs s as the result of future Current() calls. A
// sleep-hook driver thread calls this once, after runtime.LockOSThread,
// before handling any hooked syscalls.
func SetCurrent(s *Scheduler) {
	currentMu.Lock()
	currentSched = s
	currentMu.Unlock()
}
