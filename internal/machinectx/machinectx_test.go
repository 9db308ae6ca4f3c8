package machinectx

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/loongs-zhang/open-coroutine-go/internal/memstack"
)

// TestFieldOffsetsMatchAssembly pins the Context field offsets the
// asm_amd64.s / asm_arm64.s files hardcode. If this ever fails after a
// struct edit, the assembly comments at the top of those files must be
// updated to match.
func TestFieldOffsetsMatchAssembly(t *testing.T) {
	var c Context
	require.Equal(t, uintptr(0), unsafe.Offsetof(c.sp))
	require.Equal(t, uintptr(8), unsafe.Offsetof(c.pendingFrom))
	require.Equal(t, uintptr(16), unsafe.Offsetof(c.pendingData))
}

func TestMakeAndJumpRoundTrip(t *testing.T) {
	stack, err := memstack.New(memstack.MinSize() * 4)
	require.NoError(t, err)

	var mainCtx Context
	var observed int

	var target *Context
	target = Make(stack.Bottom(), stack.Top(), func(t Transfer) {
		observed = *(*int)(t.Data)
		// Jump back to the caller, completing the rendezvous.
		Jump(target, t.From, t.Data)
		panic("unreachable: coroutine resumed after returning control")
	})

	payload := 42
	result := Jump(&mainCtx, target, unsafe.Pointer(&payload))

	require.Equal(t, 42, observed)
	require.Equal(t, target, result.From)
	require.Equal(t, &payload, (*int)(result.Data))
}
