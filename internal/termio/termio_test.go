package termio

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestEnterRawOnNonTTYReturnsError(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	term := New(r)
	if err := term.EnterRaw(); err == nil {
		t.Fatalf("expected error entering raw mode on a pipe, not a tty")
	}
}

func TestRestoreIsNoOpWithoutEnterRaw(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	term := New(r)
	if err := term.Restore(); err != nil {
		t.Fatalf("Restore without EnterRaw should be a no-op, got %v", err)
	}
}

func TestWatchResizeStopsCleanly(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	called := make(chan struct{}, 1)
	watcher := WatchResize(w, 1, func(cols, rows int) {
		select {
		case called <- struct{}{}:
		default:
		}
	})

	syscall.Kill(syscall.Getpid(), syscall.SIGWINCH)
	select {
	case <-called:
	case <-time.After(200 * time.Millisecond):
		// A pipe isn't a tty, so GetSize legitimately fails and the
		// signal is simply swallowed; either outcome is fine here.
	}

	watcher.Stop()
}
