// Package event implements the per-event-type fire-and-forget bus: emit
// marks a type active and stores its boxed payload; resolve drains every
// active entry through the scheduler and clears the active bit. Grounded
// on the original's event bus (kerbin-core/src/events.rs).
package event

import (
	"sync"

	"kerbin/internal/scheduler"
)

// Subscriber is a task-producing function invoked with the just-emitted
// payload when its event type resolves.
type Subscriber func(payload any) scheduler.Task

type entry struct {
	active      bool
	data        any
	subscribers []Subscriber
}

// Bus owns one entry per registered event type, keyed by a type name the
// caller chooses (mirroring the original's type-keyed resource map).
type Bus struct {
	mu      sync.Mutex
	entries map[string]*entry
	current any // the single-slot "current event" resource published during resolve
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{entries: make(map[string]*entry)}
}

func (b *Bus) entryFor(typ string) *entry {
	e, ok := b.entries[typ]
	if !ok {
		e = &entry{}
		b.entries[typ] = e
	}
	return e
}

// Subscribe appends f to the subscriber list for event type typ.
func (b *Bus) Subscribe(typ string, f Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entryFor(typ)
	e.subscribers = append(e.subscribers, f)
}

// Emit marks typ active and stores v as its payload, overwriting any
// prior unresolved payload for the same type.
func (b *Bus) Emit(typ string, v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entryFor(typ)
	e.active = true
	e.data = v
}

// Resolve iterates every active entry, clears its active bit, publishes
// its data into the single-slot current-event resource, and runs its
// subscribers through the scheduler.
func (b *Bus) Resolve(s *scheduler.Scheduler) error {
	type call struct {
		f       Subscriber
		payload any
	}
	b.mu.Lock()
	var calls []call
	for _, e := range b.entries {
		if !e.active {
			continue
		}
		e.active = false
		b.current = e.data
		for _, sub := range e.subscribers {
			calls = append(calls, call{f: sub, payload: e.data})
		}
	}
	b.mu.Unlock()

	var tasks []scheduler.Task
	for _, c := range calls {
		tasks = append(tasks, c.f(c.payload))
	}

	if len(tasks) == 0 {
		return nil
	}
	return s.Run(tasks)
}

// Current returns the most recently published current-event payload.
func (b *Bus) Current() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
