// Package machinectx implements MachineContext: the make/jump pair of
// primitives, written in hand assembly per CPU architecture, that let a
// coroutine's private stack be resumed and suspended like a two-way
// rendezvous, following the well-known fcontext/boost.context technique
// for userland stack switching.
//
// Only amd64 and arm64 are implemented, split per architecture into
// separate files — here the split is by instruction set rather than
// syscall surface, since a machine context's "OS layer" is nothing but
// registers and a stack pointer.
package machinectx

import (
	"reflect"
	"unsafe"
)

// Transfer is the value exchanged across a Jump: the peer context that
// transferred control to us, and an opaque word of data it passed
// along.
type Transfer struct {
	From *Context
	Data unsafe.Pointer
}

// Context is an opaque, saved machine context: enough callee-saved
// register state to resume a suspended coroutine stack. A Context must
// not be copied or moved once used with Jump — the coroutine owning it
// must be pinned in memory while resumable — so it is always
// referenced through a pointer for exactly this reason.
type Context struct {
	sp uintptr

	// pendingFrom/pendingData are written by the side that jumps INTO
	// this context, immediately before the stack-pointer switch, so
	// that when this context resumes it can recover "who resumed me
	// and with what" purely from its own struct fields — no register
	// convention is needed beyond the very first bootstrap (see
	// contextStart). Field order and size must stay in sync with the
	// offsets hardcoded in asm_amd64.s / asm_arm64.s; machinectx_test.go
	// pins them with unsafe.Offsetof.
	pendingFrom *Context
	pendingData unsafe.Pointer

	// entry is invoked exactly once, the first time this Context is
	// jumped into, with the Transfer that produced that jump.
	entry func(Transfer)
}

// Make prepares stack [bottom, top) so that a subsequent Jump into the
// returned Context enters entry(Transfer{...}) with a fresh frame
// rooted at top.
func Make(bottom, top uintptr, entry func(Transfer)) *Context {
	ctx := &Context{entry: entry}
	ctx.sp = archMakeFrame(bottom, top, uintptr(unsafe.Pointer(ctx)))
	return ctx
}

// Jump performs a two-way rendezvous: it
// saves the callee-saved registers of the calling context (from) onto
// its own stack, loads target's, and transfers control. When a peer
// later jumps back into from, this call returns with the peer's
// Context and the word it passed.
func Jump(from, target *Context, data unsafe.Pointer) Transfer {
	retFrom, retData := swap(from, target, data)
	return Transfer{From: retFrom, Data: retData}
}

// swap is implemented in assembly per architecture (asm_amd64.s,
// asm_arm64.s). It must not be inlined or stack-split, since it
// manipulates SP directly to move execution onto a different stack.
//
//go:noescape
func swap(from, to *Context, data unsafe.Pointer) (retFrom *Context, retData unsafe.Pointer)

// contextStart is the Go-level landing pad for a freshly made Context's
// first Jump. It is called from contextEntryTrampoline (assembly) with
// the Context pointer that was stashed in a callee-saved register slot
// at Make time.
func contextStart(c *Context) {
	t := Transfer{From: c.pendingFrom, Data: c.pendingData}
	c.entry(t)
	panic("machinectx: entry function returned; a coroutine's trampoline must never return from its entry")
}

// contextEntryTrampoline is the assembly landing pad a freshly fabricated
// frame "returns" into (asm_amd64.s / asm_arm64.s). It recovers the
// Context pointer Make stashed in a reserved callee-saved register and
// calls contextStart with it.
func contextEntryTrampoline()

// trampolineAddr resolves contextEntryTrampoline's code address once,
// via reflect, the same indirection the wider Go ecosystem uses to get
// a raw, ABI0-callable address for an assembly-only function (it avoids
// depending on any particular linker symbol-naming internals).
var trampolineAddr = reflect.ValueOf(contextEntryTrampoline).Pointer()

func contextEntryTrampolineAddr() uintptr { return trampolineAddr }
