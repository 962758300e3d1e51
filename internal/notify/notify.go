// Package notify implements the time-decaying notification log: a
// buffered sender queue (4096 entries; Send blocks while it is full)
// feeding a poller that evicts entries once their
// severity-derived lifetime elapses, and bordered-box rendering styled
// per severity. Grounded on the original's logging/notification layer
// (kerbin-core/src/logging.rs) and on the teacher's JSONL activity log
// idiom (internal/activitylog) for the sender/queue shape.
package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
)

// Severity is a notification's urgency level, which determines its
// default on-screen lifetime.
type Severity int

const (
	Low Severity = iota
	Medium
	High
	Critical
)

// DefaultLifetime returns the severity's default display duration.
func (s Severity) DefaultLifetime() time.Duration {
	switch s {
	case Low:
		return 3 * time.Second
	case Medium:
		return 5 * time.Second
	case High:
		return 8 * time.Second
	case Critical:
		return 10 * time.Second
	default:
		return 3 * time.Second
	}
}

func (s Severity) color() string {
	switch s {
	case Low:
		return "blue"
	case Medium:
		return "yellow"
	case High:
		return "9" // orange-ish in ANSI 256
	case Critical:
		return "red"
	default:
		return "white"
	}
}

// Entry is one logged notification.
type Entry struct {
	ID       uuid.UUID
	Origin   string
	Message  string
	Severity Severity
	Lifetime time.Duration
	Inserted time.Time
}

func (e Entry) expired(now time.Time) bool {
	return now.Sub(e.Inserted) > e.Lifetime
}

// Sender is the producer side: callers push entries into a buffered
// channel that the poller drains; a push blocks only while it is full.
type Sender struct {
	queue chan Entry
}

// NewSender creates a sender backed by an unbounded-in-practice buffered
// channel (sized generously; Send never blocks in normal operation).
func NewSender() *Sender {
	return &Sender{queue: make(chan Entry, 4096)}
}

// Send enqueues a notification with its severity's default lifetime.
func (s *Sender) Send(origin, message string, sev Severity) {
	s.queue <- Entry{
		ID:       uuid.New(),
		Origin:   origin,
		Message:  message,
		Severity: sev,
		Lifetime: sev.DefaultLifetime(),
	}
}

// State owns the live (non-expired) entries, in insertion order.
type State struct {
	mu      sync.Mutex
	sender  *Sender
	entries []Entry
}

// NewState creates a notification log drained from sender.
func NewState(sender *Sender) *State {
	return &State{sender: sender}
}

// Poll drains the sender's queue, stamping each new entry with the
// current time, then evicts any entry whose age exceeds its lifetime.
func (st *State) Poll(now time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()

drain:
	for {
		select {
		case e := <-st.sender.queue:
			e.Inserted = now
			st.entries = append(st.entries, e)
		default:
			break drain
		}
	}

	live := st.entries[:0]
	for _, e := range st.entries {
		if !e.expired(now) {
			live = append(live, e)
		}
	}
	st.entries = live
}

// Entries returns a snapshot of currently live entries, oldest first.
func (st *State) Entries() []Entry {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]Entry, len(st.entries))
	copy(out, st.entries)
	return out
}

// RenderStack composes a vertical stack of bordered boxes, one per
// entry (most recent at the bottom), each box width columns wide with its
// message wrapped to the width-2 columns inside the border, styled per
// severity. The lines carry no horizontal offset, so the stack is not
// right-aligned on the screen.
func RenderStack(entries []Entry, width int, profile termenv.Profile) []string {
	var out []string
	for _, e := range entries {
		out = append(out, renderBox(e, width, profile)...)
	}
	return out
}

func renderBox(e Entry, width int, profile termenv.Profile) []string {
	innerWidth := width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}
	lines := wrapText(e.Message, innerWidth)

	color := e.Severity.color()
	top := "┌" + strings.Repeat("─", width-2) + "┐"
	bottom := "└" + strings.Repeat("─", width-2) + "┘"

	out := []string{colorize(top, color, profile)}
	for _, l := range lines {
		padded := l + strings.Repeat(" ", innerWidth-len([]rune(l)))
		out = append(out, colorize("│"+padded+"│", color, profile))
	}
	out = append(out, colorize(bottom, color, profile))
	return out
}

func colorize(s, color string, profile termenv.Profile) string {
	return termenv.String(s).Foreground(profile.Color(color)).String()
}

func wrapText(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := ""
	for _, w := range words {
		for r := []rune(w); len(r) > width; r = []rune(w) {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			lines = append(lines, string(r[:width]))
			w = string(r[width:])
		}
		candidate := w
		if cur != "" {
			candidate = cur + " " + w
		}
		if len([]rune(candidate)) > width && cur != "" {
			lines = append(lines, cur)
			cur = w
		} else {
			cur = candidate
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// Origin is a convenience formatter for log entries that want to
// include a short source tag in their message.
func Origin(component string, format string, args ...any) string {
	return fmt.Sprintf("[%s] %s", component, fmt.Sprintf(format, args...))
}
