// Package scheduler implements a single-thread driver holding a ready
// FIFO, a suspend TimerList and a finished FIFO, that promotes due-now
// suspended coroutines ahead of a dispatch pass.
package scheduler

import (
	"sync"

	"github.com/loongs-zhang/open-coroutine-go/coroutine"
	"github.com/loongs-zhang/open-coroutine-go/internal/clock"
	"github.com/loongs-zhang/open-coroutine-go/internal/idgen"
	"github.com/loongs-zhang/open-coroutine-go/internal/machinectx"
	"github.com/loongs-zhang/open-coroutine-go/internal/memstack"
	"github.com/loongs-zhang/open-coroutine-go/internal/rtlog"
	"github.com/loongs-zhang/open-coroutine-go/internal/timerlist"
)

// largeFinishedBatch is the heuristic threshold past which a pass
// triggers an automatic stack-registry shrink, when configured via
// WithShrinkKeepPerSize.
const largeFinishedBatch = 64

// Scheduler drives coroutines submitted to it one pass at a time. It is
// not safe to drive from two goroutines concurrently; Submit/Execute/
// Delay may be called from any goroutine, serialised internally by a
// mutex.
type Scheduler struct {
	id uint64

	mu         sync.Mutex
	ready      []*coroutine.Coroutine
	running    *coroutine.Coroutine
	suspend    *timerlist.TimerList[*coroutine.Coroutine]
	systemCall []*coroutine.Coroutine
	copyStack  []*coroutine.Coroutine
	finished   []*coroutine.Coroutine

	shrinkKeepPerSize int
}

// New returns an empty Scheduler with a fresh process-wide id.
func New(opts ...Option) *Scheduler {
	cfg := resolveOptions(opts)
	return &Scheduler{
		id:                idgen.Category("scheduler").Next(),
		suspend:           timerlist.New[*coroutine.Coroutine](),
		shrinkKeepPerSize: cfg.shrinkKeepPerSize,
	}
}

// ID returns this scheduler's process-unique id.
func (s *Scheduler) ID() uint64 { return s.id }

// Submit records c as owned by s, marking it Ready if its exec_time is
// unset (zero), or Suspend (queued by exec_time) otherwise, even when
// that exec_time has already elapsed.
func (s *Scheduler) Submit(c *coroutine.Coroutine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitLocked(c)
}

// submitLocked routes a coroutine with the zero (unset) exec_time
// straight to ready, and anything with an explicit exec_time — even
// one already in the past — through the suspend+promotion pipeline.
// This is a deliberate sharpening of a naive "if now < exec_time"
// rule: that reading would let an explicitly-dated but already-overdue
// coroutine join the ready FIFO directly, landing it behind plain
// (exec_time-unset) submissions instead of being promoted ahead of
// them — which breaks the expectation that explicitly-dated coroutines
// already in the past get promoted ahead of, and stay in submission
// order relative to, ordinary ready work.
func (s *Scheduler) submitLocked(c *coroutine.Coroutine) {
	c.SetScheduler(s)
	if c.ExecTime() == 0 {
		c.MarkReady()
		s.ready = append(s.ready, c)
		return
	}
	c.MarkSuspend()
	s.suspend.Insert(c.ExecTime(), c)
}

// Execute is sugar for Submit.
func (s *Scheduler) Execute(c *coroutine.Coroutine) { s.Submit(c) }

// Delay sets c's exec_time to now+d, then submits it.
func (s *Scheduler) Delay(d int64, c *coroutine.Coroutine) {
	c.SetExecTime(clock.Default().Now() + d)
	s.Submit(c)
}

// TrySchedule executes exactly one pass: promote due-now suspended
// coroutines ahead of the ready FIFO, then dispatch a snapshot-bounded
// number of ready coroutines, returning those that finished during
// this pass. Chain entrance wiring (SetNext/SetEntrance) is entirely
// caller-managed; the scheduler never infers it across an unrelated
// batch of ready coroutines.
func (s *Scheduler) TrySchedule() []*coroutine.Coroutine {
	s.mu.Lock()

	s.promoteLocked()

	n := len(s.ready)
	var finishedBatch []*coroutine.Coroutine
	for i := 0; i < n && len(s.ready) > 0; i++ {
		c := s.ready[0]
		s.ready = s.ready[1:]

		// exec_time is re-read here, immediately before the
		// run/re-suspend decision, after promotion has already run
		// for this pass.
		if now := clock.Default().Now(); c.ExecTime() > now {
			c.MarkSuspend()
			s.suspend.Insert(c.ExecTime(), c)
			continue
		}

		s.running = c
		s.mu.Unlock()
		c.Resume()
		s.mu.Lock()
		s.running = nil

		s.finished = append(s.finished, c)
		finishedBatch = append(finishedBatch, c)
		c.Exit()
	}

	s.mu.Unlock()

	if s.shrinkKeepPerSize > 0 && len(finishedBatch) >= largeFinishedBatch {
		rtlog.Default().Debug().
			Uint64("scheduler_id", s.id).
			Int("finished", len(finishedBatch)).
			Log("scheduler: shrinking stack registry after large pass")
		memstack.Global().Shrink(s.shrinkKeepPerSize)
	}

	return finishedBatch
}

func (s *Scheduler) promoteLocked() {
	now := clock.Default().Now()
	var promoted []*coroutine.Coroutine
	s.suspend.DrainDue(now, func(c *coroutine.Coroutine) {
		c.MarkReady()
		promoted = append(promoted, c)
	})
	if len(promoted) > 0 {
		s.ready = append(promoted, s.ready...)
	}
}

// TryTimedSchedule loops calling TrySchedule until both ready and
// suspend are empty, or the deadline elapses.
func (s *Scheduler) TryTimedSchedule(timeout int64) []*coroutine.Coroutine {
	deadline := clock.Default().Now() + timeout
	var all []*coroutine.Coroutine
	for {
		batch := s.TrySchedule()
		all = append(all, batch...)
		if s.Idle() {
			return all
		}
		if clock.Default().Now() >= deadline {
			return all
		}
	}
}

// Schedule loops calling TrySchedule until both ready and suspend are
// empty; it is the blocking form of TryTimedSchedule.
func (s *Scheduler) Schedule() []*coroutine.Coroutine {
	var all []*coroutine.Coroutine
	for {
		batch := s.TrySchedule()
		all = append(all, batch...)
		if s.Idle() {
			return all
		}
	}
}

// Idle reports whether both ready and suspend are empty.
func (s *Scheduler) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready) == 0 && s.suspend.Len() == 0
}

// Stats reports the current length of each collection, for tests and
// diagnostics.
func (s *Scheduler) Stats() (ready, suspend, finished int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready), s.suspend.Len(), len(s.finished)
}

// ContinueOrReturn implements coroutine.SchedulerCallback. It always
// declines the relay (returns nil): TrySchedule's own dispatch loop
// already resumes every ready coroutine with its own direct Resume()
// call, so there is never a case where handing a coroutine the next
// ready coroutine's context directly (bypassing a return into
// TrySchedule) is needed to make forward progress. The hook stays in
// place as a documented extension point — relaying directly between
// coroutines would reduce scheduler round trips — should a future
// dispatch loop want to exercise it.
func (s *Scheduler) ContinueOrReturn(self *coroutine.Coroutine) *machinectx.Context {
	return nil
}
