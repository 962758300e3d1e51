package buffer

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes the buffer's content to path (or, if path is empty,
// to the buffer's own Path). Refuses to write a scratch/placeholder
// buffer unless an explicit override path is given. Writes atomically
// via a temp file + rename, commits any open change group so the save
// point sits on a real undo boundary, then records the new mtime,
// clears dirty, advances the save point, and notifies OnSave.
func (b *TextBuffer) WriteFile(path string) error {
	target := path
	if target == "" {
		if b.IsScratch() {
			return fmt.Errorf("write file: buffer %q has no path and no override was given", b.Path)
		}
		target = b.Path
	} else {
		abs, err := filepath.Abs(target)
		if err != nil {
			return fmt.Errorf("write file: resolve path: %w", err)
		}
		target = abs
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("write file: create parent dirs: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".kerbin-tmp-*")
	if err != nil {
		return fmt.Errorf("write file: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(b.Rope.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write file: close temp: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("write file: rename: %w", err)
	}

	b.Path = target
	if fi, err := os.Stat(target); err == nil {
		b.Changed = fi.ModTime()
	}
	// Commit any change group still open so the save point lands on a
	// real undo-stack boundary instead of splitting a group in half.
	b.CommitChangeGroup()
	b.Dirty = false
	b.SavePoint = len(b.UndoStack)

	if b.OnSave != nil {
		b.OnSave(target)
	}
	return nil
}
