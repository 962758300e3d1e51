// Package buffer implements the rope-backed text buffer: multi-cursor
// editing, the invertible-action undo/redo ledger, and per-buffer state.
package buffer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kerbin/internal/extmark"
	"kerbin/internal/rope"
)

// ScratchPath is the placeholder path used for buffers with no backing file.
const ScratchPath = "<scratch>"

// Point is a (line, column-in-line, byte) position, all as char/byte
// indices into the rope at the time the point was captured.
type Point struct {
	Line, Col int
	Byte      int
}

// EditEvent describes one rope mutation in both line/column and byte terms.
type EditEvent struct {
	Start, OldEnd, NewEnd Point
}

// ChangeGroup is a unit of undo/redo: the cursor state immediately
// before the group was applied, plus the ordered inverse actions that
// undo it (application order — undo replays them in reverse).
type ChangeGroup struct {
	CursorsBefore []Cursor
	PrimaryBefore int
	Inverses      []Action
}

// TextBuffer owns a rope, its cursors, the undo/redo ledger, the
// per-frame edit-event log, extmarks, and a bag of typed per-buffer state.
type TextBuffer struct {
	Rope *rope.Rope
	Path string
	Ext  string

	Cursors       []Cursor
	PrimaryCursor int

	Version uint64 // opaque monotonic edit epoch (spec's u128 narrowed — see DESIGN.md)
	Dirty   bool
	SavePoint int

	Changed time.Time // last known on-disk mtime

	ByteChanges []EditEvent

	Flags map[string]struct{}
	States *StateBag

	Extmarks *extmark.Store

	CurrentChange *ChangeGroup
	UndoStack     []ChangeGroup
	RedoStack     []ChangeGroup

	// OnSave is invoked after a successful WriteFile, wired by the
	// frame loop / event bus owner to emit a save event (spec.md §4.9).
	OnSave func(path string)
}

func newEmpty(path, ext string) *TextBuffer {
	return &TextBuffer{
		Rope:     rope.Empty(),
		Path:     path,
		Ext:      ext,
		Cursors:  []Cursor{{A: 0, B: 0, AtStart: true}},
		Flags:    make(map[string]struct{}),
		States:   NewStateBag(),
		Extmarks: extmark.NewStore(),
	}
}

// Open loads path's content if it exists, otherwise starts empty. The
// filetype extension is derived from path and lowercased.
func Open(path string) (*TextBuffer, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	b := newEmpty(abs, ext)

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	b.Rope = rope.New(string(data))
	b.Cursors = []Cursor{{A: 0, B: 0, AtStart: true}}
	if fi, err := os.Stat(abs); err == nil {
		b.Changed = fi.ModTime()
	}
	return b, nil
}

// Scratch creates an empty buffer at the placeholder path.
func Scratch() *TextBuffer {
	return newEmpty(ScratchPath, "")
}

// IsScratch reports whether the buffer has no backing file.
func (b *TextBuffer) IsScratch() bool {
	return b.Path == ScratchPath || strings.HasPrefix(b.Path, "<") && strings.HasSuffix(b.Path, ">")
}

// --- action application ---

// Action opens a ChangeGroup if none is open, applies a, and on success
// appends its inverse to the group, marks the buffer dirty, clears the
// redo stack, and migrates extmarks. Returns whether the action succeeded.
func (b *TextBuffer) Action(a Action) bool {
	if b.CurrentChange == nil {
		b.CurrentChange = &ChangeGroup{
			CursorsBefore: cloneCursors(b.Cursors),
			PrimaryBefore: b.PrimaryCursor,
		}
	}

	before := b.Rope.Clone()
	result := a.Apply(b.Rope)
	if !result.Success {
		return false
	}

	b.reflowCursors(a, result)
	b.CurrentChange.Inverses = append(b.CurrentChange.Inverses, result.Inverse)

	startPt := pointFromRope(before, result.Start)
	oldEndPt := pointFromRope(before, result.OldEnd)
	newEndPt := pointFromRope(b.Rope, result.NewEnd)
	event := EditEvent{Start: startPt, OldEnd: oldEndPt, NewEnd: newEndPt}
	b.ByteChanges = append(b.ByteChanges, event)
	b.Extmarks.Migrate([]extmark.Edit{{Start: result.Start, OldEnd: result.OldEnd, NewEnd: result.NewEnd}})

	b.Dirty = true
	b.RedoStack = nil
	b.Version++
	b.Extmarks.SetFileVersion(b.Version)

	return true
}

// reflowCursors applies the §4.2 cursor-reflow rule to every non-primary
// cursor. The primary cursor is the one that drove the edit (its byte
// offset is where the action happened): it always collapses to a caret
// that tracks the edit directly — past the inserted text for Insert, at
// the deletion point for Delete — rather than going through the
// geometric shift rule meant for cursors elsewhere in the buffer.
func (b *TextBuffer) reflowCursors(a Action, result Result) {
	switch act := a.(type) {
	case Insert:
		byteIdx := act.Byte
		l := len(act.Content)
		for i := range b.Cursors {
			if i == b.PrimaryCursor {
				continue
			}
			c := &b.Cursors[i]
			if c.A > byteIdx {
				c.A += l
				c.B += l
			} else if c.B >= byteIdx {
				c.B += l
			}
		}
		b.Cursors[b.PrimaryCursor] = Cursor{A: result.NewEnd, B: result.NewEnd, AtStart: true}
	case Delete:
		d0, d1 := result.Start, result.OldEnd
		dLen := d1 - d0
		for i := range b.Cursors {
			if i == b.PrimaryCursor {
				continue
			}
			c := &b.Cursors[i]
			c.A = reflowDeletePoint(c.A, d0, d1, dLen)
			c.B = reflowDeletePoint(c.B, d0, d1, dLen)
		}
		b.Cursors[b.PrimaryCursor] = Cursor{A: result.Start, B: result.Start, AtStart: true}
	}
}

func reflowDeletePoint(p, d0, d1, dLen int) int {
	if p >= d1 {
		return p - dLen
	}
	if p >= d0 {
		return d0
	}
	return p
}

func pointFromRope(r *rope.Rope, byteIdx int) Point {
	line := r.ByteToLineClamped(byteIdx)
	lineStart := r.LineToByteClamped(line)
	col := r.ByteToCharClamped(byteIdx) - r.ByteToCharClamped(lineStart)
	return Point{Line: line, Col: col, Byte: byteIdx}
}

func cloneCursors(cs []Cursor) []Cursor {
	out := make([]Cursor, len(cs))
	copy(out, cs)
	return out
}

// --- undo / redo ---

// StartChangeGroup commits any currently open ChangeGroup, then opens a
// fresh one so subsequent actions are recorded as a new undo boundary.
// Callers (commands, plugins) use this to mark where one undo step
// should end and the next begin, rather than letting every edit between
// Undo presses collapse into a single group.
func (b *TextBuffer) StartChangeGroup() {
	b.commitCurrentChange()
	b.CurrentChange = &ChangeGroup{
		CursorsBefore: cloneCursors(b.Cursors),
		PrimaryBefore: b.PrimaryCursor,
	}
}

// CommitChangeGroup closes the current ChangeGroup onto the undo stack,
// if it holds any recorded actions, without opening a new one.
func (b *TextBuffer) CommitChangeGroup() {
	b.commitCurrentChange()
}

// commitCurrentChange closes any open ChangeGroup onto the undo stack.
func (b *TextBuffer) commitCurrentChange() {
	if b.CurrentChange == nil || len(b.CurrentChange.Inverses) == 0 {
		b.CurrentChange = nil
		return
	}
	b.UndoStack = append(b.UndoStack, *b.CurrentChange)
	b.CurrentChange = nil
}

// Undo commits any open group, pops the most recent undo group, replays
// its inverses in reverse, restores saved cursors, and pushes the
// resulting redo group. Returns false if there was nothing to undo.
func (b *TextBuffer) Undo() bool {
	b.commitCurrentChange()
	if len(b.UndoStack) == 0 {
		return false
	}
	group := b.UndoStack[len(b.UndoStack)-1]
	b.UndoStack = b.UndoStack[:len(b.UndoStack)-1]

	redoGroup := b.replayGroup(group)
	b.RedoStack = append(b.RedoStack, redoGroup)

	b.Dirty = len(b.UndoStack) != b.SavePoint
	return true
}

// Redo commits any open group, pops the most recent redo group, and
// replays it the same way Undo replays an undo group.
func (b *TextBuffer) Redo() bool {
	b.commitCurrentChange()
	if len(b.RedoStack) == 0 {
		return false
	}
	group := b.RedoStack[len(b.RedoStack)-1]
	b.RedoStack = b.RedoStack[:len(b.RedoStack)-1]

	undoGroup := b.replayGroup(group)
	b.UndoStack = append(b.UndoStack, undoGroup)

	b.Dirty = len(b.UndoStack) != b.SavePoint
	return true
}

// replayGroup applies group's inverses in reverse order, restores the
// saved cursor state, and returns a freshly-built opposite group whose
// own inverses (the inverse-of-inverses) undo this replay.
func (b *TextBuffer) replayGroup(group ChangeGroup) ChangeGroup {
	opposite := ChangeGroup{
		CursorsBefore: cloneCursors(b.Cursors),
		PrimaryBefore: b.PrimaryCursor,
	}
	for i := len(group.Inverses) - 1; i >= 0; i-- {
		before := b.Rope.Clone()
		result := group.Inverses[i].Apply(b.Rope)
		if !result.Success {
			continue
		}
		startPt := pointFromRope(before, result.Start)
		oldEndPt := pointFromRope(before, result.OldEnd)
		newEndPt := pointFromRope(b.Rope, result.NewEnd)
		b.ByteChanges = append(b.ByteChanges, EditEvent{Start: startPt, OldEnd: oldEndPt, NewEnd: newEndPt})
		b.Extmarks.Migrate([]extmark.Edit{{Start: result.Start, OldEnd: result.OldEnd, NewEnd: result.NewEnd}})
		opposite.Inverses = append(opposite.Inverses, result.Inverse)
		b.Version++
	}
	b.Extmarks.SetFileVersion(b.Version)
	b.Cursors = cloneCursors(group.CursorsBefore)
	b.PrimaryCursor = group.PrimaryBefore
	if b.PrimaryCursor >= len(b.Cursors) {
		b.PrimaryCursor = 0
	}
	return opposite
}

// --- cursor management ---

// CreateCursor adds a new caret cursor at byteIdx and makes it primary.
func (b *TextBuffer) CreateCursor(byteIdx int) {
	byteIdx = clamp(byteIdx, 0, b.Rope.Len())
	byteIdx = b.Rope.CharBoundaryBefore(byteIdx)
	b.Cursors = append(b.Cursors, Cursor{A: byteIdx, B: byteIdx, AtStart: true})
	b.PrimaryCursor = len(b.Cursors) - 1
}

// DropPrimaryCursor removes the primary cursor. A no-op if it is the
// only cursor.
func (b *TextBuffer) DropPrimaryCursor() {
	if len(b.Cursors) <= 1 {
		return
	}
	i := b.PrimaryCursor
	b.Cursors = append(b.Cursors[:i], b.Cursors[i+1:]...)
	if b.PrimaryCursor >= len(b.Cursors) {
		b.PrimaryCursor = len(b.Cursors) - 1
	}
}

// DropOtherCursors removes every cursor except the primary one.
func (b *TextBuffer) DropOtherCursors() {
	if len(b.Cursors) <= 1 {
		return
	}
	primary := b.Cursors[b.PrimaryCursor]
	b.Cursors = []Cursor{primary}
	b.PrimaryCursor = 0
}

// ChangeCursor sets the primary-cursor index, clamped to a valid range.
func (b *TextBuffer) ChangeCursor(index int) {
	b.PrimaryCursor = clamp(index, 0, len(b.Cursors)-1)
}

// MergeOverlappingCursors unions any pair of cursors whose selections
// overlap, preserving which post-merge selection the primary cursor
// (by value, since merges may shift indices) maps into.
func (b *TextBuffer) MergeOverlappingCursors() {
	if len(b.Cursors) <= 1 {
		return
	}
	primaryRef := b.Cursors[b.PrimaryCursor]

	merged := make([]Cursor, 0, len(b.Cursors))
	used := make([]bool, len(b.Cursors))
	for i := range b.Cursors {
		if used[i] {
			continue
		}
		cur := b.Cursors[i]
		used[i] = true
		changed := true
		for changed {
			changed = false
			for j := range b.Cursors {
				if used[j] {
					continue
				}
				if cur.overlaps(b.Cursors[j]) {
					cur = mergeCursors(cur, b.Cursors[j])
					used[j] = true
					changed = true
				}
			}
		}
		merged = append(merged, cur)
	}

	b.Cursors = merged
	b.PrimaryCursor = 0
	for i, c := range merged {
		if primaryRef.A >= c.A && primaryRef.A <= c.B {
			b.PrimaryCursor = i
			break
		}
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
