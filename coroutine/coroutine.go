// Package coroutine implements the Coroutine object: a user function
// bound to a private guarded stack, a saved machine context, an atomic
// state word and the scheduling metadata (exec_time, next, entrance,
// scheduler) that let it take part in chained execution.
package coroutine

import (
	"github.com/loongs-zhang/open-coroutine-go/internal/clock"
	"github.com/loongs-zhang/open-coroutine-go/internal/idgen"
	"github.com/loongs-zhang/open-coroutine-go/internal/machinectx"
	"github.com/loongs-zhang/open-coroutine-go/internal/memstack"
	"github.com/loongs-zhang/open-coroutine-go/internal/rtlog"
)

// Proc is a coroutine's one-shot user function.
type Proc func(param any) any

// SchedulerCallback is the narrow seam a Coroutine uses to hand control
// back to its owning scheduler once it finishes with neither next nor
// entrance set. A *scheduler.Scheduler implements this; the interface
// lives here, not there, so coroutine never imports scheduler.
type SchedulerCallback interface {
	// ContinueOrReturn is invoked from inside self's trampoline after it
	// finishes. It returns the context of another ready coroutine to
	// jump directly into, or nil to fall back to returning to self's
	// original caller.
	ContinueOrReturn(self *Coroutine) *machinectx.Context
}

// Coroutine is one stackful, cooperatively-scheduled unit of execution.
// Once submitted to a scheduler it must not move or be copied — its
// saved machine context pins it to a fixed address — so it is always
// handled through a *Coroutine.
type Coroutine struct {
	id     uint64
	stack  *memstack.Stack
	ctx    *machinectx.Context
	status *fastState

	proc   Proc
	param  any
	result any

	execTime int64 // nanoseconds, clock.Default()-relative

	next      *Coroutine
	entrance  *machinectx.Context
	scheduler SchedulerCallback

	resumeCount uint64
}

// New allocates a guarded stack for proc and returns a fresh Coroutine
// in status Created with exec_time 0. The only failure path is stack
// allocation.
func New(proc Proc, param any, opts ...Option) (*Coroutine, error) {
	cfg := resolveOptions(opts)

	stack, err := memstack.Global().PoolFor(cfg.stackSize).Allocate()
	if err != nil {
		return nil, err
	}

	c := &Coroutine{
		id:     idgen.Category("coroutine").Next(),
		stack:  stack,
		status: newFastState(Created),
		proc:   proc,
		param:  param,
	}
	c.ctx = machinectx.Make(stack.Bottom(), stack.Top(), c.trampoline)

	rtlog.Default().Debug().
		Uint64("coroutine_id", c.id).
		Uint64("stack_len", uint64(stack.Len())).
		Log("coroutine: created")
	return c, nil
}

// ID returns this coroutine's process-unique id.
func (c *Coroutine) ID() uint64 { return c.id }

// Status returns the current lifecycle state.
func (c *Coroutine) Status() Status { return c.status.Load() }

// Result returns the value the user function returned, valid once
// Status is Finished or Exited.
func (c *Coroutine) Result() any { return c.result }

// ResumeCount reports how many times the trampoline has started the
// user function: it is incremented once, after any delay has elapsed
// and just before the user function runs, so it is 0 or 1.
func (c *Coroutine) ResumeCount() uint64 { return c.resumeCount }

// SetNext links c so that, on finishing, control transfers directly to
// other's context instead of returning to the caller.
func (c *Coroutine) SetNext(other *Coroutine) { c.next = other }

// SetEntrance records the context control should return to once a
// chain (built via SetNext) reaches its tail.
// Pass the head coroutine's own Context, captured via Context(), not
// the head Coroutine's post-run snapshot.
func (c *Coroutine) SetEntrance(ctx *machinectx.Context) { c.entrance = ctx }

// Context exposes this coroutine's own saved machine context, for use
// as another coroutine's SetEntrance target when building a chain.
func (c *Coroutine) Context() *machinectx.Context { return c.ctx }

// SetScheduler records the owning scheduler.
func (c *Coroutine) SetScheduler(s SchedulerCallback) { c.scheduler = s }

// ExecTime returns the earliest nanosecond (clock.Default()-relative)
// at which this coroutine is eligible to run.
func (c *Coroutine) ExecTime() int64 { return c.execTime }

// SetExecTime is used by a scheduler to record a coroutine's scheduled
// time without going through Delay (e.g. on submission).
func (c *Coroutine) SetExecTime(t int64) { c.execTime = t }

// MarkReady and MarkSuspend let a scheduler record a submit's status
// side effect without driving a resume.
func (c *Coroutine) MarkReady()   { c.status.Store(Ready) }
func (c *Coroutine) MarkSuspend() { c.status.Store(Suspend) }

// Resume jumps into this coroutine's context using its last-set param,
// returning the post-run snapshot.
func (c *Coroutine) Resume() *Coroutine { return c.ResumeWith(c.param) }

// ResumeWith is Resume with param substituted first.
func (c *Coroutine) ResumeWith(param any) *Coroutine {
	c.param = param
	var caller machinectx.Context
	machinectx.Jump(&caller, c.ctx, nil)
	return c
}

// Delay sets exec_time = now + duration, marks Suspend, then resumes;
// the trampoline's own delay check is what actually keeps the user
// function from running before exec_time.
func (c *Coroutine) Delay(d int64) *Coroutine { return c.DelayWith(d, c.param) }

// DelayWith is Delay with param substituted first.
func (c *Coroutine) DelayWith(d int64, param any) *Coroutine {
	c.execTime = clock.Default().Now() + d
	c.status.Store(Suspend)
	return c.ResumeWith(param)
}

// Exit marks the coroutine Exited and returns its stack to the pool.
// Once Exited, the context must not be resumed again.
func (c *Coroutine) Exit() {
	c.status.Store(Exited)
	memstack.Global().PoolFor(c.stack.Len()).Revert(c.stack)
}

// trampoline is the entry point machinectx.Make wires up; it runs the
// user function exactly once overall, but may internally Jump back to
// its caller any number of times before the delay loop below lets it
// proceed, and again after dispatch lets a chain rendezvous resume it
// in place of an actual Go-level return.
func (c *Coroutine) trampoline(t machinectx.Transfer) {
	for clock.Default().Now() < c.execTime {
		c.status.Store(Suspend)
		t = machinectx.Jump(c.ctx, t.From, nil)
	}

	c.status.Store(Running)
	c.resumeCount++

	// The runtime makes no attempt to recover a panicking user function:
	// it destroys this stack and terminates the scheduler round that
	// triggered it.
	c.result = c.proc(c.param)
	c.status.Store(Finished)

	c.dispatch(t)
}

// dispatch hands control to whatever comes next once the user function
// finishes: a chained successor, a chain's entrance back to its head,
// the owning scheduler's relay hook, or the original resumer. next and
// entrance jumps do not return through normal Go call-return: this
// coroutine's own stack
// stays parked at the Jump call site until something later jumps back
// into c.ctx (typically a chain's tail via its entrance link), at which
// point execution resumes right here and falls through to the next
// check in sequence, exactly as if the earlier Jump had simply
// returned. None of these intermediate Jump calls is expected to ever
// actually return control to this function — each is a one-way relay
// further down a chain — so the final statement, not any individual
// branch, is what ultimately returns control to whoever first resumed
// this coroutine.
func (c *Coroutine) dispatch(t machinectx.Transfer) {
	if next := c.next; next != nil {
		machinectx.Jump(c.ctx, next.ctx, nil)
	}
	if entrance := c.entrance; entrance != nil {
		machinectx.Jump(c.ctx, entrance, nil)
	}
	if sched := c.scheduler; sched != nil {
		if target := sched.ContinueOrReturn(c); target != nil {
			machinectx.Jump(c.ctx, target, nil)
		}
	}
	machinectx.Jump(c.ctx, t.From, nil)
}
