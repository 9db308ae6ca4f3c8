// Package memstack implements the stack memory pool: MemoryPage (OS
// layer), Stack, StackPool and StackPoolRegistry. It leans on
// golang.org/x/sys/unix for mmap/mprotect/munmap to back a
// guarded-stack allocator.
package memstack

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/loongs-zhang/open-coroutine-go/errs"
)

var (
	pageSizeOnce sync.Once
	pageSize     uintptr

	maxSizeOnce      sync.Once
	maxSizeUnguarded uintptr
)

// PageSize returns the OS page size in bytes.
func PageSize() uintptr {
	pageSizeOnce.Do(func() {
		pageSize = uintptr(unix.Getpagesize())
	})
	return pageSize
}

// MinSize is the smallest stack size the pool will allocate: one page.
func MinSize() uintptr {
	return PageSize()
}

// MaxSize returns the largest stack size the pool will allocate. When
// protected is true, one page is reserved for the guard page.
func MaxSize(protected bool) uintptr {
	maxSizeOnce.Do(func() {
		var rlim unix.Rlimit
		if err := unix.Getrlimit(unix.RLIMIT_STACK, &rlim); err != nil || rlim.Cur == 0 {
			// Fall back to a conservative default (8 MiB) if the
			// rlimit can't be read, rather than fail MaxSize itself.
			maxSizeUnguarded = roundUpToPage(8 << 20)
		} else {
			maxSizeUnguarded = roundUpToPage(uintptr(rlim.Cur))
		}
	})
	if protected {
		return maxSizeUnguarded - PageSize()
	}
	return maxSizeUnguarded
}

func roundUpToPage(size uintptr) uintptr {
	ps := PageSize()
	if size == 0 {
		return ps
	}
	rem := size % ps
	if rem == 0 {
		return size
	}
	return size + (ps - rem)
}

// allocate obtains a writable anonymous mapping of size bytes from the
// OS.
func allocate(size uintptr) (uintptr, error) {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, &errs.IoError{Op: "mmap", Cause: err}
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// deallocate releases a mapping obtained from allocate.
func deallocate(ptr uintptr, size uintptr) error {
	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
	if err := unix.Munmap(b); err != nil {
		return &errs.IoError{Op: "munmap", Cause: err}
	}
	return nil
}

// protectLowestPage marks the lowest page of the region [ptr, ptr+size)
// inaccessible, turning it into a guard page.
func protectLowestPage(ptr uintptr) error {
	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), PageSize())
	if err := unix.Mprotect(b, unix.PROT_NONE); err != nil {
		return &errs.IoError{Op: "mprotect", Cause: err}
	}
	return nil
}
