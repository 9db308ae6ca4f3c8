package memstack

import (
	"github.com/loongs-zhang/open-coroutine-go/errs"
	"github.com/loongs-zhang/open-coroutine-go/internal/rtlog"
)

// Stack represents one contiguous allocation with the following
// invariants: top >= bottom; if Protected, the page immediately below
// Bottom is mapped inaccessible as a guard; Len() is always a multiple
// of the page size; Len() is within [MinSize(), MaxSize(Protected)].
type Stack struct {
	top       uintptr
	bottom    uintptr
	protected bool
}

// Top returns the highest address of the stack (where a MachineContext
// built on this stack begins growing downward from).
func (s *Stack) Top() uintptr { return s.top }

// Bottom returns the lowest usable address of the stack.
func (s *Stack) Bottom() uintptr { return s.bottom }

// Protected reports whether the page below Bottom is a guard page.
func (s *Stack) Protected() bool { return s.protected }

// Len returns the usable length of the stack, top - bottom.
func (s *Stack) Len() uintptr { return s.top - s.bottom }

// New allocates a Stack of at least size bytes, always installing a
// guard page: size is rounded up to a page multiple; sizes exceeding
// MaxSize(true), the protected maximum, are refused.
func New(size uintptr) (*Stack, error) {
	rounded := roundUpToPage(size)
	if rounded == 0 {
		rounded = MinSize()
	}
	if rounded > MaxSize(true) {
		return nil, &errs.ExceedsMaximumSizeError{Requested: size, Max: MaxSize(true)}
	}

	// Reserve one extra page beyond the requested usable size for the
	// guard page: a protected stack's max size is always one page larger
	// than an unprotected one of the same usable size.
	total := rounded + PageSize()

	base, err := allocate(total)
	if err != nil {
		return nil, err
	}
	if err := protectLowestPage(base); err != nil {
		_ = deallocate(base, total)
		return nil, err
	}

	s := &Stack{
		top:       base + total,
		bottom:    base + PageSize(),
		protected: true,
	}
	rtlog.Default().Debug().
		Uint64("top", uint64(s.top)).
		Uint64("len", uint64(s.Len())).
		Log("memstack: allocated guarded stack")
	return s, nil
}

// release unmaps the stack's full backing region, including its guard
// page. Called by Pool.Drop and Pool.shrink, never directly by user code.
func (s *Stack) release() error {
	base := s.bottom - PageSize()
	total := s.top - base
	return deallocate(base, total)
}
