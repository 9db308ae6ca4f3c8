package machinectx

import "unsafe"

// archMakeFrame fabricates the initial saved-register frame for amd64,
// matching the push order used by swap (asm_amd64.s):
// BP, BX, R12, R13, R14, R15, then a return address. Reversing that
// push order gives the pop order the epilogue uses, so the layout
// (low to high address, i.e. in the order SP-relative offsets grow)
// is: R15, R14, R13, R12, BX, BP, return-address.
//
// R12's slot carries the Context pointer itself: contextEntryTrampoline
// reads it straight out of R12 the first time this frame is resumed,
// before any Go code has had a chance to pass it another way.
func archMakeFrame(bottom, top, ctxPtr uintptr) uintptr {
	const (
		wordSize  = 8
		numWords  = 7 // R15,R14,R13,R12,BX,BP,retaddr
		r12Offset = 3 * wordSize
		retOffset = 6 * wordSize
	)

	sp := (top &^ 0xf) - numWords*wordSize
	if sp < bottom {
		panic("machinectx: stack too small to hold initial frame")
	}

	words := unsafe.Slice((*uintptr)(unsafe.Pointer(sp)), numWords)
	for i := range words {
		words[i] = 0
	}
	words[r12Offset/wordSize] = ctxPtr
	words[retOffset/wordSize] = contextEntryTrampolineAddr()

	return sp
}
