package kerblog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

func TestHookFired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	l := New(true, path, "kerbin", "sess-1")
	defer l.Close()

	l.HookFired("Update", 3)

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	var e struct {
		Actor     string `json:"actor"`
		SessionID string `json:"session_id"`
		Event     string `json:"event"`
		HookPath  string `json:"hook_path"`
		TaskCount int    `json:"task_count"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Actor != "kerbin" || e.SessionID != "sess-1" || e.Event != "hook_fired" {
		t.Fatalf("e = %+v", e)
	}
	if e.HookPath != "Update" || e.TaskCount != 3 {
		t.Fatalf("e = %+v", e)
	}
}

func TestCommandDispatchedOmitsEmptyArgs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	l := New(true, path, "kerbin", "sess")
	defer l.Close()

	l.CommandDispatched("quit", nil)

	lines := readLines(t, path)
	if strings.Contains(lines[0], "\"args\"") {
		t.Errorf("expected args to be omitted when empty, got %q", lines[0])
	}
}

func TestDisabledLoggerIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	l := New(false, path, "kerbin", "sess")
	defer l.Close()

	l.HookFired("Render", 1)
	l.CommandDispatched("write", []string{"foo.txt"})
	l.BufferEdited("insert", 12)
	l.FrameRendered(4.2)
	l.StateChange("n", "i")

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file to be created when disabled")
	}
}

func TestNopLoggerIsNoop(t *testing.T) {
	l := Nop()
	l.HookFired("Render", 1)
	l.CommandDispatched("write", []string{"foo.txt"})
	l.BufferEdited("insert", 12)
	l.FrameRendered(4.2)
	l.StateChange("n", "i")
	l.Close()
}

func TestMultipleEntriesAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	l := New(true, path, "kerbin", "sess")
	defer l.Close()

	l.HookFired("Update", 1)
	l.BufferEdited("delete", -4)
	l.StateChange("n", "i")

	if lines := readLines(t, path); len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
}

func TestTimestampPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	l := New(true, path, "kerbin", "sess")
	defer l.Close()

	l.StateChange("n", "v")

	lines := readLines(t, path)
	var e struct {
		Timestamp string `json:"ts"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Timestamp == "" {
		t.Error("expected ts field to be present")
	}
}
