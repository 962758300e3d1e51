package buffer

// Cursor is an inclusive byte-range selection. A == B represents a
// caret occupying a single byte position (mirroring the original's
// RangeInclusive selection model, where a zero-width selection isn't
// representable — a caret always covers at least the byte in front of
// it). AtStart selects which endpoint extends when the selection grows.
type Cursor struct {
	A, B    int
	AtStart bool
}

// Caret returns the end of the selection currently treated as the caret.
func (c Cursor) Caret() int {
	if c.AtStart {
		return c.A
	}
	return c.B
}

// Anchor returns the end opposite the caret.
func (c Cursor) Anchor() int {
	if c.AtStart {
		return c.B
	}
	return c.A
}

// overlaps reports whether two inclusive ranges share at least one byte.
func (c Cursor) overlaps(o Cursor) bool {
	return c.A <= o.B && o.A <= c.B
}

// merge unions two overlapping cursors into one, keeping the outermost
// caret/anchor orientation of the lower-indexed (earlier) cursor.
func mergeCursors(a, b Cursor) Cursor {
	lo := a.A
	if b.A < lo {
		lo = b.A
	}
	hi := a.B
	if b.B > hi {
		hi = b.B
	}
	return Cursor{A: lo, B: hi, AtStart: a.AtStart}
}
