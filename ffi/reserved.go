package ffi

import "errors"

// ErrNotImplemented is returned by every reserved hook below.
var ErrNotImplemented = errors.New("open-coroutine: hook not implemented")

// Reserved file-descriptor-oriented I/O hooks. The surface is declared
// to match the shape of a per-platform epoll/kqueue split, but left
// intentionally unimplemented: general async I/O readiness is out of
// scope here.
//
// Each hook takes only the arguments meaningful to its own signature
// and returns ErrNotImplemented; none of them touch a real file
// descriptor or socket.

func Poll(fds []PollFD, timeoutMillis int32) (int, error) {
	return 0, ErrNotImplemented
}

func Select(nfds int, readFDs, writeFDs, errFDs []int32, timeoutMillis int32) (int, error) {
	return 0, ErrNotImplemented
}

func EpollWait(epfd int32, maxEvents int, timeoutMillis int32) (int, error) {
	return 0, ErrNotImplemented
}

func Kevent(kq int32, changes, events []byte, timeoutNanos int64) (int, error) {
	return 0, ErrNotImplemented
}

func Read(fd int32, buf []byte) (int, error) {
	return 0, ErrNotImplemented
}

func Write(fd int32, buf []byte) (int, error) {
	return 0, ErrNotImplemented
}

func Recv(fd int32, buf []byte, flags int32) (int, error) {
	return 0, ErrNotImplemented
}

func Send(fd int32, buf []byte, flags int32) (int, error) {
	return 0, ErrNotImplemented
}

func Accept(fd int32) (int32, error) {
	return 0, ErrNotImplemented
}

func Connect(fd int32, address []byte) error {
	return ErrNotImplemented
}

func Close(fd int32) error {
	return ErrNotImplemented
}

func SetSockOpt(fd int32, level, name int32, value []byte) error {
	return ErrNotImplemented
}

// PollFD mirrors the shape of a pollfd entry well enough for Poll's
// signature to type-check; it carries no behaviour.
type PollFD struct {
	FD      int32
	Events  int16
	REvents int16
}
