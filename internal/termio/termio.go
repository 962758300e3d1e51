// Package termio owns the raw-mode lifecycle of the controlling terminal:
// entering/restoring cooked mode, querying size, and watching SIGWINCH.
// Grounded on the teacher's raw-mode handling in internal/overlay/overlay.go
// (MakeRaw/Restore/WatchResize) and its isatty-gated color hint detection in
// internal/cmd/term_colors.go. creack/pty is used here only for
// pty.GetsizeFull, a size fallback; raw mode goes through x/term, and kerbin
// does not wrap a child process in a PTY the way the teacher's overlay does.
package termio

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Terminal owns the raw/cooked mode transition for a single file descriptor,
// normally os.Stdin.
type Terminal struct {
	fd      int
	state   *term.State
	rawized bool
}

// New returns a Terminal bound to f's descriptor.
func New(f *os.File) *Terminal {
	return &Terminal{fd: int(f.Fd())}
}

// IsTTY reports whether this process's stdout is attached to a real
// terminal, the same check the teacher gates color-hint detection on.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// EnterRaw switches the terminal into raw mode, remembering the prior state
// so Restore can undo it.
func (t *Terminal) EnterRaw() error {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return fmt.Errorf("termio: enter raw mode: %w", err)
	}
	t.state = state
	t.rawized = true
	return nil
}

// Restore returns the terminal to its pre-EnterRaw state. It is safe to call
// even if EnterRaw was never called or already restored.
func (t *Terminal) Restore() error {
	if !t.rawized {
		return nil
	}
	t.rawized = false
	if err := term.Restore(t.fd, t.state); err != nil {
		return fmt.Errorf("termio: restore terminal: %w", err)
	}
	return nil
}

// Size returns the current column/row count of the terminal.
func (t *Terminal) Size() (cols, rows int, err error) {
	cols, rows, err = term.GetSize(t.fd)
	if err != nil {
		return 0, 0, fmt.Errorf("termio: get size: %w", err)
	}
	return cols, rows, nil
}

// pseudoSize reports the size via pty.GetsizeFull, used as a fallback on
// descriptors term.GetSize doesn't recognize (e.g. a pty slave obtained
// through creack/pty rather than a plain stdin fd).
func pseudoSize(f *os.File) (cols, rows int, err error) {
	ws, err := pty.GetsizeFull(f)
	if err != nil {
		return 0, 0, fmt.Errorf("termio: pty getsize: %w", err)
	}
	return int(ws.Cols), int(ws.Rows), nil
}

// ResizeWatcher delivers terminal dimensions whenever SIGWINCH fires.
type ResizeWatcher struct {
	fd     int
	sigCh  chan os.Signal
	stopCh chan struct{}
}

// WatchResize installs a SIGWINCH handler and returns a watcher that must be
// stopped with Stop. onResize is invoked with the new size on every signal
// for which a size can be determined, with a floor of minRows rows (sizes
// below the floor are ignored, mirroring the teacher's minRows guard).
func WatchResize(f *os.File, minRows int, onResize func(cols, rows int)) *ResizeWatcher {
	w := &ResizeWatcher{
		fd:     int(f.Fd()),
		sigCh:  make(chan os.Signal, 1),
		stopCh: make(chan struct{}),
	}
	signal.Notify(w.sigCh, syscall.SIGWINCH)

	go func() {
		for {
			select {
			case <-w.sigCh:
				cols, rows, err := term.GetSize(w.fd)
				if err != nil || rows < minRows {
					if pc, pr, serr := pseudoSize(f); serr == nil && pr >= minRows {
						cols, rows = pc, pr
					} else {
						continue
					}
				}
				onResize(cols, rows)
			case <-w.stopCh:
				return
			}
		}
	}()

	return w
}

// Stop unregisters the SIGWINCH handler and terminates the watcher goroutine.
func (w *ResizeWatcher) Stop() {
	signal.Stop(w.sigCh)
	close(w.stopCh)
}
