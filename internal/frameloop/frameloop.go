// Package frameloop drives the editor's single cooperative tick: drain
// queued commands, dispatch hooks in fixed order, flush the terminal
// surface, then busy-wait the remainder of a fixed frame budget while
// still cooperatively draining incoming commands. Grounded on the
// original's frame loop (kerbin-core state/systems wiring) and on the
// teacher's lifecycleLoop (internal/session/session.go).
package frameloop

import (
	"time"

	"kerbin/internal/hook"
	"kerbin/internal/scheduler"
)

// Budget is the fixed per-frame time budget.
const Budget = 12 * time.Millisecond

// Command is one queued mutation to apply to editor state before hooks
// run.
type Command func()

// Queue is a non-blocking command channel drained at the start of every
// frame and cooperatively during the frame's idle wait.
type Queue struct {
	ch chan Command
}

// NewQueue creates a queue with the given buffer capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan Command, capacity)}
}

// Submit enqueues a command for the next drain. It never blocks: if the
// queue is full the command is dropped, mirroring a queue sized generously
// enough in practice that this never triggers during normal operation.
func (q *Queue) Submit(c Command) {
	select {
	case q.ch <- c:
	default:
	}
}

// drainNonBlocking runs every currently queued command without waiting
// for more to arrive.
func (q *Queue) drainNonBlocking() {
	for {
		select {
		case c := <-q.ch:
			c()
		default:
			return
		}
	}
}

// Terminal is the minimal surface the frame loop flushes against each
// tick: a composited frame string and the means to write it and restore
// modes on exit.
type Terminal interface {
	Flush(frame string) error
	Restore() error
}

// Loop owns the command queue, hook bus, scheduler, and terminal the
// frame loop drives.
type Loop struct {
	Queue     *Queue
	Hooks     *hook.Bus
	Scheduler *scheduler.Scheduler
	Terminal  Terminal

	// CurrentExt is the file extension of the active buffer, used to
	// compute the per-filetype render hook path each frame.
	CurrentExt func() string

	// Composite renders the current state into the frame string handed
	// to Terminal.Flush.
	Composite func() string

	// Running reports whether the loop should keep ticking; the frame
	// loop checks it at the top of every iteration.
	Running func() bool
}

// fixedHookOrder is the sequence §4.13 dispatches every frame, before
// the per-filetype and Render* hooks.
var fixedHookOrder = []hook.Name{hook.Update, hook.PostUpdate, hook.UpdateCleanup, hook.ChunkRegister}

// Run ticks the frame loop until Running returns false, then restores
// the terminal.
func (l *Loop) Run() error {
	for l.Running() {
		if err := l.tick(); err != nil {
			l.Terminal.Restore()
			return err
		}
	}
	return l.Terminal.Restore()
}

func (l *Loop) tick() error {
	start := time.Now()

	l.Queue.drainNonBlocking()

	for _, h := range fixedHookOrder {
		if err := l.Hooks.Call(l.Scheduler, string(h), start); err != nil {
			return err
		}
	}
	if l.CurrentExt != nil {
		ext := l.CurrentExt()
		if err := l.Hooks.Call(l.Scheduler, string(hook.RenderFiletype(ext)), start); err != nil {
			return err
		}
	}
	if err := l.Hooks.Call(l.Scheduler, string(hook.Render), start); err != nil {
		return err
	}
	if err := l.Hooks.Call(l.Scheduler, string(hook.RenderChunks), start); err != nil {
		return err
	}

	if l.Composite != nil && l.Terminal != nil {
		if err := l.Terminal.Flush(l.Composite()); err != nil {
			return err
		}
	}

	l.waitOutBudget(start)
	return nil
}

// waitOutBudget busy-waits the remainder of Budget past start, draining
// the command queue cooperatively so input during the wait isn't
// starved until the next frame.
func (l *Loop) waitOutBudget(start time.Time) {
	for {
		elapsed := time.Since(start)
		if elapsed >= Budget {
			return
		}
		l.Queue.drainNonBlocking()
		remaining := Budget - elapsed
		if remaining > time.Millisecond {
			time.Sleep(time.Millisecond)
		}
	}
}
