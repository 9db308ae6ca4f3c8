// Package ffi is the C ABI surface: a thin shim that lets a foreign
// caller submit a Coroutine, drive the current thread's scheduler, and
// reach the hooked sleep family. Go values
// never cross the cgo boundary directly — each exported function hands
// out or consumes a runtime/cgo.Handle, the same indirection the wider
// Go ecosystem uses to let C code hold an opaque, safely-collectible
// reference to Go-owned memory.
package ffi

/*
#include <stdint.h>
*/
import "C"

import (
	"runtime/cgo"
	"time"

	"github.com/loongs-zhang/open-coroutine-go/coroutine"
	"github.com/loongs-zhang/open-coroutine-go/scheduler"
	"github.com/loongs-zhang/open-coroutine-go/sleephook"
)

// coroutine_crate takes a handle to a freshly constructed *coroutine.
// Coroutine (obtained Go-side, e.g. by a cgo-exported constructor not
// defined here — this package only covers the scheduling surface) and
// submits it to the current thread's scheduler.
//
//export coroutine_crate
func coroutine_crate(h C.uintptr_t) {
	handle := cgo.Handle(h)
	c := handle.Value().(*coroutine.Coroutine)
	scheduler.Current().Submit(c)
	handle.Delete()
}

// try_schedule drives one scheduler pass and returns a handle to the
// finished batch. The handle is consumed by
// finished_list_len / finished_list_get / finished_list_free.
//
//export try_schedule
func try_schedule() C.uintptr_t {
	finished := scheduler.Current().TrySchedule()
	return C.uintptr_t(cgo.NewHandle(finished))
}

// schedule is the blocking variant of try_schedule.
//
//export schedule
func schedule() C.uintptr_t {
	finished := scheduler.Current().Schedule()
	return C.uintptr_t(cgo.NewHandle(finished))
}

// finished_list_len reports how many coroutines are in the batch a
// try_schedule/schedule handle refers to.
//
//export finished_list_len
func finished_list_len(h C.uintptr_t) C.int {
	finished := cgo.Handle(h).Value().([]*coroutine.Coroutine)
	return C.int(len(finished))
}

// finished_list_get returns a handle to the i'th coroutine in a
// finished batch, for the caller to inspect via a separate
// coroutine-inspection shim (out of scope here, see coroutine package).
//
//export finished_list_get
func finished_list_get(h C.uintptr_t, i C.int) C.uintptr_t {
	finished := cgo.Handle(h).Value().([]*coroutine.Coroutine)
	return C.uintptr_t(cgo.NewHandle(finished[int(i)]))
}

// finished_list_free releases the batch handle. It does not release the
// individual coroutine handles finished_list_get produced — those are
// owned by whoever called finished_list_get.
//
//export finished_list_free
func finished_list_free(h C.uintptr_t) {
	cgo.Handle(h).Delete()
}

// sleep, usleep and nanosleep are the hooked sleep family: their symbol
// names are preserved so a dynamic linker can interpose them ahead of
// libc's own definitions.

//export sleep
func sleep(secs C.uint32_t) C.uint32_t {
	return C.uint32_t(sleephook.Sleep(uint32(secs)))
}

//export usleep
func usleep(micros C.uint32_t) C.int32_t {
	return C.int32_t(sleephook.Usleep(uint32(micros)))
}

// nanosleep mirrors libc's (const timespec *, timespec *) signature by
// accepting seconds+nanoseconds split into plain integers rather than a
// C struct, so this file needs no second header dependency beyond
// stdint.h; a thin C shim in the final shared-library build translates
// the real struct timespec into this call.
//
//export nanosleep
func nanosleep(reqSec C.int64_t, reqNsec C.int64_t, remSec *C.int64_t, remNsec *C.int64_t) C.int32_t {
	remaining, ret := sleephook.Nanosleep(time.Duration(reqSec)*time.Second + time.Duration(reqNsec))
	*remSec = C.int64_t(remaining / time.Second)
	*remNsec = C.int64_t(remaining % time.Second)
	return C.int32_t(ret)
}
