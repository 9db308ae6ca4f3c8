package memstack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loongs-zhang/open-coroutine-go/errs"
)

func TestStackSizeZeroRoundsToMinSize(t *testing.T) {
	s, err := New(0)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.release()) }()
	require.Equal(t, MinSize(), s.Len())
	require.True(t, s.Protected())
}

func TestStackExceedsMaximumSize(t *testing.T) {
	max := MaxSize(true)

	s, err := New(max)
	require.NoError(t, err)
	require.NoError(t, s.release())

	_, err = New(max + PageSize())
	require.Error(t, err)
	var tooBig *errs.ExceedsMaximumSizeError
	require.ErrorAs(t, err, &tooBig)
}

func TestPoolAllocateRevertRoundTrip(t *testing.T) {
	p := newPool(MinSize())

	s, err := p.Allocate()
	require.NoError(t, err)

	avail, using := p.Stats()
	require.Equal(t, 0, avail)
	require.Equal(t, 1, using)

	p.Revert(s)

	avail, using = p.Stats()
	require.Equal(t, 1, avail)
	require.Equal(t, 0, using)

	// Allocate should now reuse the reverted stack rather than mmap
	// a fresh one.
	s2, err := p.Allocate()
	require.NoError(t, err)
	require.Same(t, s, s2)

	require.NoError(t, p.Drop(s2))
	avail, using = p.Stats()
	require.Equal(t, 0, avail)
	require.Equal(t, 0, using)
}

func TestRegistryPoolForNormalisesSize(t *testing.T) {
	r := NewRegistry()
	p1 := r.PoolFor(1)
	p2 := r.PoolFor(PageSize())
	require.Same(t, p1, p2)
	require.Equal(t, PageSize(), p1.Size())
}

func TestRegistryShrinkKeepsBound(t *testing.T) {
	r := NewRegistry()
	p := r.PoolFor(MinSize())

	var stacks []*Stack
	for i := 0; i < 4; i++ {
		s, err := p.Allocate()
		require.NoError(t, err)
		stacks = append(stacks, s)
	}
	for _, s := range stacks {
		p.Revert(s)
	}
	avail, _ := p.Stats()
	require.Equal(t, 4, avail)

	r.Shrink(1)
	avail, _ = p.Stats()
	require.Equal(t, 1, avail)
}
