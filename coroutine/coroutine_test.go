package coroutine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loongs-zhang/open-coroutine-go/internal/clock"
)

func TestNewDefaultsToCreatedStatus(t *testing.T) {
	c, err := New(func(param any) any { return param }, nil)
	require.NoError(t, err)
	require.Equal(t, Created, c.Status())
	require.Equal(t, uint64(0), c.ResumeCount())
}

func TestResumeRunsProcToCompletion(t *testing.T) {
	c, err := New(func(param any) any { return param }, 42)
	require.NoError(t, err)

	c.Resume()

	require.Equal(t, Finished, c.Status())
	require.Equal(t, 42, c.Result())
	require.Equal(t, uint64(1), c.ResumeCount())
}

func TestResumeWithOverridesParam(t *testing.T) {
	c, err := New(func(param any) any { return param }, "first")
	require.NoError(t, err)

	c.ResumeWith("second")

	require.Equal(t, "second", c.Result())
}

func TestDelayDefersExecutionUntilDue(t *testing.T) {
	c, err := New(func(param any) any { return "ran" }, nil)
	require.NoError(t, err)

	c.Delay(int64(50 * time.Millisecond))
	require.Equal(t, Suspend, c.Status())
	require.Nil(t, c.Result())

	for clock.Default().Now() < c.ExecTime() {
		time.Sleep(time.Millisecond)
	}
	c.Resume()
	require.Equal(t, Finished, c.Status())
	require.Equal(t, "ran", c.Result())
}

func TestExitRevertsStackToPool(t *testing.T) {
	c, err := New(func(param any) any { return nil }, nil)
	require.NoError(t, err)

	c.Resume()
	c.Exit()
	require.Equal(t, Exited, c.Status())
}

func TestChainedExecutionRunsInOrderAndReturnsOnce(t *testing.T) {
	var order []string

	h, err := New(func(param any) any { order = append(order, "H"); return nil }, nil)
	require.NoError(t, err)
	m, err := New(func(param any) any { order = append(order, "M"); return nil }, nil)
	require.NoError(t, err)
	tl, err := New(func(param any) any { order = append(order, "T"); return nil }, nil)
	require.NoError(t, err)

	h.SetNext(m)
	m.SetNext(tl)
	tl.SetEntrance(h.Context())

	h.Resume()

	require.Equal(t, []string{"H", "M", "T"}, order)
	require.Equal(t, Finished, h.Status())
	require.Equal(t, Finished, m.Status())
	require.Equal(t, Finished, tl.Status())
}
