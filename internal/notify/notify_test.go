package notify

import (
	"testing"
	"time"

	"github.com/muesli/termenv"
)

func TestPollDrainsSenderQueue(t *testing.T) {
	sender := NewSender()
	st := NewState(sender)
	sender.Send("editor", "saved file.txt", Low)

	now := time.Now()
	st.Poll(now)

	entries := st.Entries()
	if len(entries) != 1 || entries[0].Message != "saved file.txt" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestPollEvictsExpiredEntries(t *testing.T) {
	sender := NewSender()
	st := NewState(sender)
	sender.Send("editor", "transient", Low)

	start := time.Now()
	st.Poll(start)

	later := start.Add(Low.DefaultLifetime() + time.Second)
	st.Poll(later)

	if len(st.Entries()) != 0 {
		t.Fatalf("expected entry to be evicted after its lifetime elapsed")
	}
}

func TestSeverityLifetimes(t *testing.T) {
	cases := []struct {
		sev  Severity
		want time.Duration
	}{
		{Low, 3 * time.Second},
		{Medium, 5 * time.Second},
		{High, 8 * time.Second},
		{Critical, 10 * time.Second},
	}
	for _, c := range cases {
		if got := c.sev.DefaultLifetime(); got != c.want {
			t.Fatalf("severity %d lifetime = %v, want %v", c.sev, got, c.want)
		}
	}
}

func TestRenderStackProducesBorderedBox(t *testing.T) {
	entries := []Entry{{Message: "hello world", Severity: Medium}}
	lines := RenderStack(entries, 20, termenv.Ascii)
	if len(lines) < 3 {
		t.Fatalf("expected at least top/content/bottom lines, got %d", len(lines))
	}
}

func TestWrapTextSplitsLongMessages(t *testing.T) {
	lines := wrapText("this is a fairly long notification message", 10)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping across multiple lines, got %v", lines)
	}
	for _, l := range lines {
		if len([]rune(l)) > 10 {
			t.Fatalf("line exceeds width: %q", l)
		}
	}
}
