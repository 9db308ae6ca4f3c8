package sleephook

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loongs-zhang/open-coroutine-go/coroutine"
	"github.com/loongs-zhang/open-coroutine-go/scheduler"
)

// fakeResolver simulates the real libc nanosleep without actually
// blocking the test for the requested interval, so the sleep-hook
// scenario runs fast and deterministically.
type fakeResolver struct {
	calls atomic.Int32
}

func (f *fakeResolver) Nanosleep(req, rem *unix_timespec) int32 {
	f.calls.Add(1)
	rem.Sec, rem.Nsec = 0, 0
	return 0
}

func TestNanosleepRunsSubmittedCoroutineDuringSleep(t *testing.T) {
	fake := &fakeResolver{}
	SetResolver(fake)
	defer SetResolver(&dlsymResolver{})

	s := scheduler.New()
	scheduler.SetCurrent(s)
	defer scheduler.SetCurrent(scheduler.Global())

	ran := false
	c, err := coroutine.New(func(param any) any { ran = true; return nil }, nil)
	require.NoError(t, err)
	s.Submit(c)

	remaining, ret := Nanosleep(5 * time.Millisecond)

	require.True(t, ran)
	require.Equal(t, int32(0), ret)
	require.True(t, remaining <= 0)
}

func TestNanosleepFallsThroughForResidual(t *testing.T) {
	fake := &fakeResolver{}
	SetResolver(fake)
	defer SetResolver(&dlsymResolver{})

	s := scheduler.New()
	scheduler.SetCurrent(s)
	defer scheduler.SetCurrent(scheduler.Global())

	// Nothing submitted: try_timed_schedule returns immediately, leaving
	// the whole interval as residual for the fallthrough call.
	_, ret := Nanosleep(10 * time.Millisecond)

	require.Equal(t, int32(0), ret)
	require.Equal(t, int32(1), fake.calls.Load())
}

func TestSleepReturnsResidualSeconds(t *testing.T) {
	SetResolver(&fakeResolver{})
	defer SetResolver(&dlsymResolver{})
	scheduler.SetCurrent(scheduler.New())
	defer scheduler.SetCurrent(scheduler.Global())

	require.Equal(t, uint32(0), Sleep(0))
}
