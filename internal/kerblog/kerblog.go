// Package kerblog is the editor's JSONL activity log: one line per
// notable event (hook dispatch, command execution, buffer edit, frame
// timing, mode change), each stamped with a timestamp, actor, and session
// ID. Grounded on the teacher's internal/activitylog logger (same
// enabled-flag/New/Nop/Close shape and one-JSON-object-per-line format),
// adapted from CLI-agent events to editor events.
package kerblog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger appends JSONL activity records to a file, or discards them
// entirely when disabled or constructed via Nop.
type Logger struct {
	enabled   bool
	mu        sync.Mutex
	f         *os.File
	actor     string
	sessionID string
}

// New opens (creating as needed) the log file at path and returns a
// Logger that appends to it, unless enabled is false, in which case every
// method is a no-op and no file is created.
func New(enabled bool, path, actor, sessionID string) *Logger {
	l := &Logger{enabled: enabled, actor: actor, sessionID: sessionID}
	if !enabled {
		return l
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			l.f = f
		}
	}
	return l
}

// Nop returns a Logger that discards every event; useful in tests and
// for callers that haven't configured a log path.
func Nop() *Logger {
	return &Logger{enabled: false}
}

// Close closes the underlying file, if one is open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

func (l *Logger) write(event string, fields map[string]any) {
	if !l.enabled || l.f == nil {
		return
	}

	record := map[string]any{
		"ts":         time.Now().Format(time.RFC3339Nano),
		"actor":      l.actor,
		"session_id": l.sessionID,
		"event":      event,
	}
	for k, v := range fields {
		record[k] = v
	}

	data, err := json.Marshal(record)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.f, string(data))
}

// HookFired logs dispatch of a named hook together with the task count
// that ran under it.
func (l *Logger) HookFired(path string, taskCount int) {
	l.write("hook_fired", map[string]any{"hook_path": path, "task_count": taskCount})
}

// CommandDispatched logs a resolved command invocation.
func (l *Logger) CommandDispatched(name string, args []string) {
	fields := map[string]any{"command": name}
	if len(args) > 0 {
		fields["args"] = args
	}
	l.write("command_dispatched", fields)
}

// BufferEdited logs a buffer mutation by the action name used for its
// undo-stack entry (e.g. "insert", "delete", "replace").
func (l *Logger) BufferEdited(action string, byteDelta int) {
	l.write("buffer_edited", map[string]any{"action": action, "byte_delta": byteDelta})
}

// FrameRendered logs one frame loop tick's timing.
func (l *Logger) FrameRendered(durationMS float64) {
	l.write("frame_rendered", map[string]any{"duration_ms": durationMS})
}

// StateChange logs a named state transition, e.g. a mode-stack push/pop.
func (l *Logger) StateChange(from, to string) {
	l.write("state_change", map[string]any{"from": from, "to": to})
}
