package frameloop

import (
	"testing"
	"time"

	"kerbin/internal/hook"
	"kerbin/internal/scheduler"
)

type fakeTerminal struct {
	flushes  []string
	restored bool
}

func (f *fakeTerminal) Flush(frame string) error {
	f.flushes = append(f.flushes, frame)
	return nil
}

func (f *fakeTerminal) Restore() error {
	f.restored = true
	return nil
}

func TestRunTicksUntilNotRunning(t *testing.T) {
	term := &fakeTerminal{}
	ticks := 0
	l := &Loop{
		Queue:     NewQueue(8),
		Hooks:     hook.NewBus(),
		Scheduler: scheduler.New(scheduler.NewResources()),
		Terminal:  term,
		Composite: func() string { return "frame" },
		Running: func() bool {
			ticks++
			return ticks <= 2
		},
	}
	if err := l.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !term.restored {
		t.Fatalf("expected terminal restored on exit")
	}
	if len(term.flushes) != 2 {
		t.Fatalf("got %d flushes, want 2", len(term.flushes))
	}
}

func TestTickDrainsQueueBeforeHooks(t *testing.T) {
	applied := false
	q := NewQueue(4)
	q.Submit(func() { applied = true })

	l := &Loop{
		Queue:     q,
		Hooks:     hook.NewBus(),
		Scheduler: scheduler.New(scheduler.NewResources()),
		Terminal:  &fakeTerminal{},
		Running:   func() bool { return false },
	}
	if err := l.tick(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied {
		t.Fatalf("expected queued command to run during tick")
	}
}

func TestTickDispatchesFixedHookOrder(t *testing.T) {
	var order []string
	b := hook.NewBus()
	for _, name := range []hook.Name{hook.Update, hook.PostUpdate, hook.UpdateCleanup, hook.Render} {
		n := string(name)
		b.Register(n, []scheduler.Task{{Name: n, Run: func() { order = append(order, n) }}})
	}

	l := &Loop{
		Queue:     NewQueue(4),
		Hooks:     b,
		Scheduler: scheduler.New(scheduler.NewResources()),
		Terminal:  &fakeTerminal{},
		Running:   func() bool { return false },
	}
	if err := l.tick(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Update", "PostUpdate", "UpdateCleanup", "Render"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("order[%d] = %q, want %q (full: %v)", i, order[i], w, order)
		}
	}
}

func TestWaitOutBudgetRespectsDeadline(t *testing.T) {
	l := &Loop{Queue: NewQueue(1)}
	start := time.Now()
	l.waitOutBudget(start.Add(-Budget)) // already past budget, should return immediately
	if time.Since(start) > 5*time.Millisecond {
		t.Fatalf("expected immediate return when already past budget")
	}
}
