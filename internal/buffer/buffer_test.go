package buffer

import "testing"

func TestMultiCursorInsertReflow(t *testing.T) {
	b := Scratch()
	b.Action(Insert{Byte: 0, Content: "abc\ndef"})
	// Reset undo history so this test's own action is isolated.
	b.UndoStack = nil
	b.CurrentChange = nil
	b.Dirty = false

	b.Cursors = []Cursor{
		{A: 1, B: 1, AtStart: true},
		{A: 5, B: 5, AtStart: true},
	}
	b.PrimaryCursor = 0

	if !b.Action(Insert{Byte: 1, Content: "XY"}) {
		t.Fatalf("insert failed")
	}

	if got := b.Rope.String(); got != "aXYbc\ndef" {
		t.Fatalf("rope = %q", got)
	}
	if c := b.Cursors[b.PrimaryCursor]; c.A != 3 || c.B != 3 {
		t.Fatalf("primary caret = %+v, want byte 3", c)
	}
	if b.Cursors[1].A != 7 || b.Cursors[1].B != 7 {
		t.Fatalf("secondary cursor = %+v, want byte 7", b.Cursors[1])
	}
}

func TestDeleteWithCursorClamp(t *testing.T) {
	b := Scratch()
	b.Action(Insert{Byte: 0, Content: "hello"})
	b.UndoStack = nil
	b.CurrentChange = nil
	b.Dirty = false

	b.Cursors = []Cursor{
		{A: 1, B: 1, AtStart: true},
		{A: 4, B: 4, AtStart: true},
	}
	b.PrimaryCursor = 0

	if !b.Action(Delete{Byte: 0, Len: 3}) {
		t.Fatalf("delete failed")
	}
	if got := b.Rope.String(); got != "lo" {
		t.Fatalf("rope = %q", got)
	}
	if c := b.Cursors[b.PrimaryCursor]; c.A != 0 || c.B != 0 {
		t.Fatalf("primary caret = %+v, want byte 0", c)
	}
	if b.Cursors[1].A != 1 || b.Cursors[1].B != 1 {
		t.Fatalf("secondary cursor = %+v, want byte 1", b.Cursors[1])
	}
}

func TestUndoRedoCleanFlag(t *testing.T) {
	b := Scratch()
	b.Action(Insert{Byte: 0, Content: "hi"})
	b.CommitChangeGroup()
	b.SavePoint = len(b.UndoStack)
	b.Dirty = false

	b.Action(Insert{Byte: 2, Content: "!"})
	if !b.Dirty {
		t.Fatalf("expected dirty after insert")
	}

	if !b.Undo() {
		t.Fatalf("undo failed")
	}
	if b.Dirty {
		t.Fatalf("expected clean after undo back to save point")
	}
	if b.Rope.String() != "hi" {
		t.Fatalf("rope after undo = %q", b.Rope.String())
	}

	if !b.Redo() {
		t.Fatalf("redo failed")
	}
	if !b.Dirty {
		t.Fatalf("expected dirty after redo")
	}
	if b.Rope.String() != "hi!" {
		t.Fatalf("rope after redo = %q", b.Rope.String())
	}
}

func TestActionVersionAndInverse(t *testing.T) {
	b := Scratch()
	before := b.Version
	if !b.Action(Insert{Byte: 0, Content: "xyz"}) {
		t.Fatalf("insert failed")
	}
	if b.Version != before+1 {
		t.Fatalf("version = %d, want %d", b.Version, before+1)
	}

	inv := b.CurrentChange.Inverses[len(b.CurrentChange.Inverses)-1]
	snapshot := b.Rope.String()
	result := inv.Apply(b.Rope)
	if !result.Success {
		t.Fatalf("inverse application failed")
	}
	if b.Rope.String() != "" {
		t.Fatalf("inverse should restore empty rope, got %q (from %q)", b.Rope.String(), snapshot)
	}
}

func TestMergeOverlappingCursors(t *testing.T) {
	b := Scratch()
	b.Action(Insert{Byte: 0, Content: "0123456789"})
	b.Cursors = []Cursor{
		{A: 0, B: 2},
		{A: 1, B: 4},
		{A: 6, B: 8},
	}
	b.PrimaryCursor = 0
	b.MergeOverlappingCursors()

	if len(b.Cursors) != 2 {
		t.Fatalf("got %d cursors, want 2: %+v", len(b.Cursors), b.Cursors)
	}
	for i := 0; i < len(b.Cursors); i++ {
		for j := i + 1; j < len(b.Cursors); j++ {
			if b.Cursors[i].overlaps(b.Cursors[j]) {
				t.Fatalf("cursors %d and %d still overlap: %+v", i, j, b.Cursors)
			}
		}
	}
}

func TestMoveLinesClampsColumn(t *testing.T) {
	b := Scratch()
	b.Action(Insert{Byte: 0, Content: "abcdef\nxy\nqrstuv"})
	b.Cursors = []Cursor{{A: 5, B: 5, AtStart: true}} // on line 0, col 5
	b.PrimaryCursor = 0

	b.MoveLines(1, false)
	caret := b.Cursors[0].Caret()
	line := b.Rope.ByteToLineClamped(caret)
	if line != 1 {
		t.Fatalf("expected line 1, got %d", line)
	}
	content, _ := b.Rope.LineContentChecked(1)
	if caret != b.Rope.LineToByteClamped(1)+len(content) {
		t.Fatalf("expected column clamp to end of short line, caret=%d", caret)
	}
}

func TestWriteFileRefusesScratchWithoutOverride(t *testing.T) {
	b := Scratch()
	if err := b.WriteFile(""); err == nil {
		t.Fatalf("expected error writing scratch buffer without override")
	}
}

func TestStartChangeGroupSeparatesUndoSteps(t *testing.T) {
	b := Scratch()
	b.Action(Insert{Byte: 0, Content: "a"})
	b.StartChangeGroup()
	b.Action(Insert{Byte: 1, Content: "b"})
	b.StartChangeGroup()
	b.Action(Insert{Byte: 2, Content: "c"})
	b.CommitChangeGroup()

	if got := b.Rope.String(); got != "abc" {
		t.Fatalf("rope = %q, want %q", got, "abc")
	}
	if len(b.UndoStack) != 3 {
		t.Fatalf("undo stack has %d groups, want 3 (one per StartChangeGroup boundary)", len(b.UndoStack))
	}

	if !b.Undo() {
		t.Fatalf("undo failed")
	}
	if got := b.Rope.String(); got != "ab" {
		t.Fatalf("rope after one undo = %q, want %q", got, "ab")
	}
	if !b.Undo() {
		t.Fatalf("undo failed")
	}
	if got := b.Rope.String(); got != "a" {
		t.Fatalf("rope after two undos = %q, want %q", got, "a")
	}
}

func TestWriteFileCommitsOpenChangeGroup(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.txt"

	b := Scratch()
	b.Action(Insert{Byte: 0, Content: "hi"})
	if b.CurrentChange == nil {
		t.Fatalf("expected an open change group after Action")
	}

	if err := b.WriteFile(path); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if b.CurrentChange != nil {
		t.Fatalf("expected WriteFile to commit the open change group")
	}
	if b.SavePoint != len(b.UndoStack) || len(b.UndoStack) != 1 {
		t.Fatalf("save point = %d, undo stack = %d, want both 1", b.SavePoint, len(b.UndoStack))
	}

	b.Action(Insert{Byte: 2, Content: "!"})
	if !b.Undo() {
		t.Fatalf("undo failed")
	}
	if b.Dirty {
		t.Fatalf("expected clean after undoing back to the commit made by WriteFile")
	}
}
