package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loongs-zhang/open-coroutine-go/coroutine"
)

func TestBasicEcho(t *testing.T) {
	s := New()
	c, err := coroutine.New(func(param any) any { return param }, 42)
	require.NoError(t, err)

	s.Submit(c)
	finished := s.TrySchedule()

	require.Len(t, finished, 1)
	require.Equal(t, 42, finished[0].Result())

	ready, suspend, _ := s.Stats()
	require.Zero(t, ready)
	require.Zero(t, suspend)
}

func TestDelayedRelease(t *testing.T) {
	s := New()
	c, err := coroutine.New(func(param any) any { return "done" }, nil)
	require.NoError(t, err)
	c.SetExecTime(int64(500 * time.Millisecond))

	s.Submit(c)
	finished := s.TrySchedule()
	require.Len(t, finished, 0)

	ready, suspend, _ := s.Stats()
	require.Zero(t, ready)
	require.Equal(t, 1, suspend)

	time.Sleep(501 * time.Millisecond)
	finished = s.TrySchedule()
	require.Len(t, finished, 1)
}

func TestOrderingFIFO(t *testing.T) {
	s := New()
	var order []string

	a, err := coroutine.New(func(param any) any { order = append(order, "A"); return nil }, nil)
	require.NoError(t, err)
	b, err := coroutine.New(func(param any) any { order = append(order, "B"); return nil }, nil)
	require.NoError(t, err)

	s.Submit(a)
	s.Submit(b)
	s.TrySchedule()

	require.Equal(t, []string{"A", "B"}, order)
}

func TestOrderingIdenticalPastExecTimeIsFIFO(t *testing.T) {
	s := New()
	var order []string

	a, err := coroutine.New(func(param any) any { order = append(order, "A"); return nil }, nil)
	require.NoError(t, err)
	b, err := coroutine.New(func(param any) any { order = append(order, "B"); return nil }, nil)
	require.NoError(t, err)
	a.SetExecTime(-100)
	b.SetExecTime(-100)

	s.Submit(a)
	s.Submit(b)
	s.TrySchedule()

	require.Equal(t, []string{"A", "B"}, order)
}

func TestOverduePromotion(t *testing.T) {
	s := New()
	var order []string

	a, err := coroutine.New(func(param any) any { order = append(order, "A"); return nil }, nil)
	require.NoError(t, err)
	b, err := coroutine.New(func(param any) any { order = append(order, "B"); return nil }, nil)
	require.NoError(t, err)
	b.SetExecTime(-1)

	s.Submit(a)
	s.Submit(b)
	s.TrySchedule()

	require.Equal(t, []string{"B", "A"}, order)
}

func TestChainedExecutionThroughScheduler(t *testing.T) {
	s := New()
	var order []string

	h, err := coroutine.New(func(param any) any { order = append(order, "H"); return nil }, nil)
	require.NoError(t, err)
	m, err := coroutine.New(func(param any) any { order = append(order, "M"); return nil }, nil)
	require.NoError(t, err)
	tl, err := coroutine.New(func(param any) any { order = append(order, "T"); return nil }, nil)
	require.NoError(t, err)

	h.SetNext(m)
	m.SetNext(tl)
	tl.SetEntrance(h.Context())

	s.Submit(h)
	finished := s.TrySchedule()

	require.Equal(t, []string{"H", "M", "T"}, order)
	require.Len(t, finished, 1)
	require.Equal(t, h.ID(), finished[0].ID())
}

func TestScheduleDrainsUntilIdle(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		c, err := coroutine.New(func(param any) any { return param }, i)
		require.NoError(t, err)
		s.Submit(c)
	}

	finished := s.Schedule()
	require.Len(t, finished, 5)
	require.True(t, s.Idle())
}
