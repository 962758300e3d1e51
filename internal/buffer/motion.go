package buffer

// MoveBytes moves the primary cursor's caret by n bytes (negative
// moves left), clamped to the rope's bounds and rounded to a char
// boundary. When extend is true the selection grows from the anchor
// opposite the current caret end; otherwise the cursor collapses to
// a caret at the new position.
func (b *TextBuffer) MoveBytes(n int, extend bool) {
	c := b.Cursors[b.PrimaryCursor]
	newCaret := clamp(c.Caret()+n, 0, b.Rope.Len())
	newCaret = b.Rope.CharBoundaryBefore(newCaret)
	b.applyMotion(newCaret, extend)
}

// MoveChars moves the primary cursor's caret by n chars.
func (b *TextBuffer) MoveChars(n int, extend bool) {
	c := b.Cursors[b.PrimaryCursor]
	charIdx := b.Rope.ByteToCharClamped(c.Caret())
	newCaret := b.Rope.CharToByteClamped(charIdx + n)
	b.applyMotion(newCaret, extend)
}

// MoveLines moves the primary cursor's caret by n lines, preserving the
// column char index clamped to the target line's content length
// (excluding its terminator).
func (b *TextBuffer) MoveLines(n int, extend bool) {
	c := b.Cursors[b.PrimaryCursor]
	caret := c.Caret()
	curLine := b.Rope.ByteToLineClamped(caret)
	lineStartByte := b.Rope.LineToByteClamped(curLine)
	col := b.Rope.ByteToCharClamped(caret) - b.Rope.ByteToCharClamped(lineStartByte)

	targetLine := clamp(curLine+n, 0, b.Rope.LineCount()-1)
	targetLineStartByte := b.Rope.LineToByteClamped(targetLine)
	contentLen, _ := b.Rope.LineContentLenChecked(targetLine)
	targetCol := clamp(col, 0, contentLen)
	targetStartChar := b.Rope.ByteToCharClamped(targetLineStartByte)
	newCaret := b.Rope.CharToByteClamped(targetStartChar + targetCol)

	b.applyMotion(newCaret, extend)
}

func (b *TextBuffer) applyMotion(newCaret int, extend bool) {
	c := &b.Cursors[b.PrimaryCursor]
	if !extend {
		*c = Cursor{A: newCaret, B: newCaret, AtStart: true}
		return
	}
	anchor := c.Anchor()
	lo, hi := anchor, newCaret
	atStart := newCaret < anchor
	if lo > hi {
		lo, hi = hi, lo
	}
	*c = Cursor{A: lo, B: hi, AtStart: atStart}
}
