package hook

import (
	"testing"
	"time"

	"kerbin/internal/scheduler"
)

func TestCallRunsMatchingLiteralPattern(t *testing.T) {
	b := NewBus()
	ran := false
	b.Register("Update", []scheduler.Task{
		{Name: "t", Run: func() { ran = true }},
	})
	s := scheduler.New(scheduler.NewResources())
	if err := b.Call(s, "Update", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatalf("expected task to run")
	}
}

func TestCallPicksHighestRankedPattern(t *testing.T) {
	b := NewBus()
	var fired string
	b.Register("RenderFiletype::*", []scheduler.Task{{Name: "wild", Run: func() { fired = "wild" }}})
	b.Register("RenderFiletype::go", []scheduler.Task{{Name: "exact", Run: func() { fired = "exact" }}})

	s := scheduler.New(scheduler.NewResources())
	if err := b.Call(s, "RenderFiletype::go", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fired != "exact" {
		t.Fatalf("fired = %q, want exact (higher rank than wildcard)", fired)
	}
}

func TestCallAlternationMatches(t *testing.T) {
	b := NewBus()
	ran := false
	b.Register("Update::a|b|c", []scheduler.Task{{Name: "t", Run: func() { ran = true }}})
	s := scheduler.New(scheduler.NewResources())
	if err := b.Call(s, "Update::b", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatalf("expected alternation component to match")
	}
}

func TestCallNoMatchIsNoop(t *testing.T) {
	b := NewBus()
	s := scheduler.New(scheduler.NewResources())
	if err := b.Call(s, "Nonexistent", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRenderFiletypeBuildsPath(t *testing.T) {
	if RenderFiletype(".go") != "RenderFiletype::go" {
		t.Fatalf("got %q", RenderFiletype(".go"))
	}
	if RenderFiletype("go") != "RenderFiletype::go" {
		t.Fatalf("got %q", RenderFiletype("go"))
	}
}
