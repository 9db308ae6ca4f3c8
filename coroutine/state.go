package coroutine

import "sync/atomic"

// Status is one of the coroutine lifecycle states.
type Status uint32

const (
	Created Status = iota
	Ready
	Running
	Suspend
	SystemCall
	CopyStack
	Finished
	Exited
)

func (s Status) String() string {
	switch s {
	case Created:
		return "Created"
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Suspend:
		return "Suspend"
	case SystemCall:
		return "SystemCall"
	case CopyStack:
		return "CopyStack"
	case Finished:
		return "Finished"
	case Exited:
		return "Exited"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free state word: a single atomic word, no mutex,
// read with Load and set with an unconditional Store. It isn't padded to a
// cache line — a Coroutine is a heap object with plenty of other fields
// around this one, so false sharing between coroutines isn't the same
// concern it would be for one hot singleton loop.
type fastState struct {
	v atomic.Uint32
}

func newFastState(initial Status) *fastState {
	s := &fastState{}
	s.v.Store(uint32(initial))
	return s
}

func (s *fastState) Load() Status { return Status(s.v.Load()) }

func (s *fastState) Store(to Status) { s.v.Store(uint32(to)) }
