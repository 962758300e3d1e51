// Package hook implements the hook bus: name-path patterns (`a::b::c` or
// `a/b/c` for LSP-facing hooks) with literal, wildcard, and alternation
// components, ranked and dispatched to the scheduler. Grounded on the
// original's hook bus (kerbin-core/src/hooks.rs).
package hook

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"kerbin/internal/scheduler"
)

// Name is one of the fixed hooks the frame loop dispatches every tick,
// in fixed order, plus the per-extension filetype hook.
type Name string

const (
	Update        Name = "Update"
	PostUpdate    Name = "PostUpdate"
	UpdateCleanup Name = "UpdateCleanup"
	Render        Name = "Render"
	RenderChunks  Name = "RenderChunks"
	ChunkRegister Name = "ChunkRegister"
)

// RenderFiletype builds the per-extension render hook path, e.g. for a
// ".go" buffer: "RenderFiletype::go".
func RenderFiletype(ext string) Name {
	return Name("RenderFiletype::" + strings.TrimPrefix(ext, "."))
}

// Registration pairs a hook pattern with the tasks it fires and an
// optional recurrence window gating periodic (e.g. autosave-class)
// hooks: when set, the hook only fires once the rrule's next occurrence
// after LastFired has passed.
type Registration struct {
	Pattern  string
	Tasks    []scheduler.Task
	Repeat   *rrule.RRule
	LastFired time.Time
}

// Bus owns every registered hook pattern.
type Bus struct {
	regs []*Registration
}

// NewBus creates an empty hook bus.
func NewBus() *Bus {
	return &Bus{}
}

// Register adds a pattern->tasks registration, returning it so callers
// can later attach a Repeat rule for periodic gating.
func (b *Bus) Register(pattern string, tasks []scheduler.Task) *Registration {
	r := &Registration{Pattern: pattern, Tasks: tasks}
	b.regs = append(b.regs, r)
	return r
}

// splitPath splits a dispatched hook path on "::" or "/", matching
// whichever the pattern itself uses.
func splitPath(path string) []string {
	if strings.Contains(path, "::") {
		return strings.Split(path, "::")
	}
	return strings.Split(path, "/")
}

// matchComponent reports whether one pattern component matches one path
// component: "*" matches anything; "a|b|c" matches any listed literal;
// otherwise exact string equality.
func matchComponent(pat, comp string) bool {
	if pat == "*" {
		return true
	}
	if strings.Contains(pat, "|") {
		for _, alt := range strings.Split(pat, "|") {
			if alt == comp {
				return true
			}
		}
		return false
	}
	return pat == comp
}

// rank computes a pattern's specificity: 0 minus 2 per wildcard
// component and 1 per alternation component. Higher (closer to 0) is
// more specific.
func rank(patComponents []string) int {
	r := 0
	for _, c := range patComponents {
		if c == "*" {
			r -= 2
		} else if strings.Contains(c, "|") {
			r -= 1
		}
	}
	return r
}

func matches(patPath, dispatchComps []string) bool {
	if len(patPath) != len(dispatchComps) {
		return false
	}
	for i, p := range patPath {
		if !matchComponent(p, dispatchComps[i]) {
			return false
		}
	}
	return true
}

// Call dispatches path to the single highest-ranking matching pattern's
// task set (ties keep all matching registrations at that rank), handing
// them to the scheduler. Patterns gated by a Repeat rule that hasn't
// reached its next occurrence yet are skipped and not counted toward
// ranking.
func (b *Bus) Call(s *scheduler.Scheduler, path string, now time.Time) error {
	comps := splitPath(path)

	bestRank := -1 << 31
	var tasks []scheduler.Task
	var due []*Registration

	for _, reg := range b.regs {
		patComps := splitPath(reg.Pattern)
		if !matches(patComps, comps) {
			continue
		}
		if reg.Repeat != nil {
			next := reg.Repeat.After(reg.LastFired, false)
			if next.After(now) {
				continue
			}
		}
		r := rank(patComps)
		switch {
		case r > bestRank:
			bestRank = r
			tasks = append([]scheduler.Task(nil), reg.Tasks...)
			due = []*Registration{reg}
		case r == bestRank:
			tasks = append(tasks, reg.Tasks...)
			due = append(due, reg)
		}
	}

	if len(tasks) == 0 {
		return nil
	}
	if err := s.Run(tasks); err != nil {
		return err
	}
	for _, reg := range due {
		if reg.Repeat != nil {
			reg.LastFired = now
		}
	}
	return nil
}
