package sleephook

import (
	"time"

	"github.com/loongs-zhang/open-coroutine-go/internal/clock"
	"github.com/loongs-zhang/open-coroutine-go/scheduler"
)

// Nanosleep reimplements the libc nanosleep contract: drive the
// calling thread's current scheduler for up to req, then — if time
// remains — fall through to the real next-in-chain nanosleep for the
// residual, returning whatever it reports as both the residual
// duration and the call's return code (0 on success, non-zero/EINTR
// otherwise, per POSIX).
func Nanosleep(req time.Duration) (remaining time.Duration, ret int32) {
	now := clock.Default().Now()
	deadline := now + int64(req)

	scheduler.Current().TryTimedSchedule(int64(req))

	left := deadline - clock.Default().Now()
	if left <= 0 {
		return 0, 0
	}

	reqTs := unix_timespec{
		Sec:  left / int64(time.Second),
		Nsec: left % int64(time.Second),
	}
	var rem unix_timespec
	ret = currentResolver().Nanosleep(&reqTs, &rem)
	remaining = time.Duration(rem.Sec)*time.Second + time.Duration(rem.Nsec)
	return remaining, ret
}

// Sleep reimplements libc sleep(3): seconds requested in, residual
// seconds out.
func Sleep(secs uint32) uint32 {
	remaining, _ := Nanosleep(time.Duration(secs) * time.Second)
	return uint32(remaining / time.Second)
}

// Usleep reimplements libc usleep(3): microseconds requested in, the
// underlying nanosleep return code out.
func Usleep(micros uint32) int32 {
	_, ret := Nanosleep(time.Duration(micros) * time.Microsecond)
	return ret
}
