// Package sleephook reimplements the sleep family (sleep, usleep,
// nanosleep) so that a call from inside a coroutine yields to the
// calling thread's scheduler instead of blocking it outright. Finding
// the "real" libc nanosleep to fall through to for any
// leftover interval requires a dynamic loader's next-symbol lookup —
// cgo's dlsym(RTLD_NEXT, ...) is the only way to reach that from Go, so
// this is the one package in the module that needs cgo; everything it
// calls into in the rest of the runtime stays pure Go.
package sleephook

/*
#include <dlfcn.h>
#include <stdlib.h>
#include <time.h>

typedef int (*nanosleep_fn)(const struct timespec *, struct timespec *);

static int call_next_nanosleep(nanosleep_fn fn, const struct timespec *req, struct timespec *rem) {
	return fn(req, rem);
}
*/
import "C"

import (
	"sync"
	"time"
	"unsafe"

	"github.com/loongs-zhang/open-coroutine-go/errs"
)

// NextSymbolResolver looks up the next definition of a libc symbol in
// the dynamic loader's search order: the sleep hooks require a
// dynamic loader that exposes a "next symbol" lookup, e.g.
// dlsym(RTLD_NEXT, "nanosleep"). It is an interface so tests can
// substitute a fake without linking against a real libc nanosleep.
type NextSymbolResolver interface {
	// Nanosleep calls through to the next nanosleep symbol in the
	// loader's search order with req, writing any residual into rem,
	// and reports the call's return code.
	Nanosleep(req, rem *unix_timespec) int32
}

// unix_timespec mirrors struct timespec's layout (seconds, nanoseconds)
// without depending on golang.org/x/sys/unix's Timespec field-width
// quirks across platforms — sleephook only needs it to round-trip
// through cgo's C.struct_timespec.
type unix_timespec struct {
	Sec  int64
	Nsec int64
}

type dlsymResolver struct {
	once sync.Once
	fn   C.nanosleep_fn
	err  error
}

func (r *dlsymResolver) resolve() {
	r.once.Do(func() {
		sym := C.CString("nanosleep")
		defer C.free(unsafe.Pointer(sym))
		p := C.dlsym(C.RTLD_NEXT, sym)
		if p == nil {
			r.err = &errs.IoError{Op: "dlsym(RTLD_NEXT, \"nanosleep\")", Cause: errDlsymNotFound}
			return
		}
		r.fn = C.nanosleep_fn(p)
	})
}

func (r *dlsymResolver) Nanosleep(req, rem *unix_timespec) int32 {
	r.resolve()
	if r.err != nil {
		// No next libc in the chain (e.g. statically linked, or running
		// under a test binary with no real nanosleep symbol beyond this
		// one): fall back to Go's own sleep, which still honours the
		// POSIX residual contract of "0 unless interrupted" since Go
		// has no interrupting-signal semantics for time.Sleep.
		time.Sleep(time.Duration(req.Sec)*time.Second + time.Duration(req.Nsec))
		rem.Sec, rem.Nsec = 0, 0
		return 0
	}

	creq := C.struct_timespec{tv_sec: C.long(req.Sec), tv_nsec: C.long(req.Nsec)}
	var crem C.struct_timespec
	ret := C.call_next_nanosleep(r.fn, &creq, &crem)
	rem.Sec, rem.Nsec = int64(crem.tv_sec), int64(crem.tv_nsec)
	return int32(ret)
}

var errDlsymNotFound = dlsymNotFoundError{}

type dlsymNotFoundError struct{}

func (dlsymNotFoundError) Error() string { return "no further nanosleep symbol in search order" }

var (
	resolverMu      sync.RWMutex
	defaultResolver NextSymbolResolver = &dlsymResolver{}
)

// DefaultResolver returns the resolver Nanosleep/Sleep/Usleep currently
// use: the process-wide dlsym(RTLD_NEXT, ...)-backed one, or whatever
// SetResolver last installed in its place.
func DefaultResolver() NextSymbolResolver { return currentResolver() }

// SetResolver overrides the resolver used by this package's hooks, for
// tests that need to substitute a fake next-nanosleep implementation.
func SetResolver(r NextSymbolResolver) {
	resolverMu.Lock()
	defaultResolver = r
	resolverMu.Unlock()
}

func currentResolver() NextSymbolResolver {
	resolverMu.RLock()
	defer resolverMu.RUnlock()
	return defaultResolver
}
