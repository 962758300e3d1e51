package buffer

import "kerbin/internal/rope"

// Action is an invertible mutation applied to a Rope (and, through
// Applier, to the cursors and edit-event log riding on top of it).
// Applying an action returns a Result carrying the inverse action that
// would undo it.
type Action interface {
	// Apply mutates r in place and returns the result. rope-level
	// application never touches cursors or the edit log directly —
	// TextBuffer.action() (buffer.go) does that around the call.
	Apply(r *rope.Rope) Result
}

// Result is what applying an Action produces: whether it succeeded,
// the inverse action, and (on success) the byte range touched, used by
// the caller to update cursors and emit an edit event.
type Result struct {
	Success bool
	Inverse Action
	// Start/OldEnd/NewEnd describe the byte range touched, valid only
	// when Success is true. For Insert, OldEnd == Start (nothing
	// removed) and NewEnd == Start+len(content). For Delete, NewEnd ==
	// Start (nothing inserted) and OldEnd == Start+removedBytes.
	Start, OldEnd, NewEnd int
}

func noopResult(success bool) Result {
	return Result{Success: success, Inverse: NoOp{}}
}

// Insert inserts Content at the given byte offset.
type Insert struct {
	Byte    int
	Content string
}

// Apply implements Action.
func (a Insert) Apply(r *rope.Rope) Result {
	if a.Byte < 0 || a.Byte > r.Len() {
		return noopResult(false)
	}
	actual := r.CharBoundaryBefore(a.Byte)
	if !r.InsertBytes(actual, []byte(a.Content)) {
		return noopResult(false)
	}
	return Result{
		Success: true,
		Inverse: Delete{Byte: actual, Len: runeCount(a.Content)},
		Start:   actual,
		OldEnd:  actual,
		NewEnd:  actual + len(a.Content),
	}
}

// Delete removes Len chars (not bytes — see spec.md Open Questions)
// starting at the char position corresponding to Byte.
type Delete struct {
	Byte int
	Len  int
}

// Apply implements Action.
func (a Delete) Apply(r *rope.Rope) Result {
	if a.Byte < 0 || a.Byte > r.Len() {
		return noopResult(false)
	}
	charIdx := r.ByteToCharClamped(a.Byte)
	delStart := r.CharToByteClamped(charIdx)

	totalChars := r.CharCount()
	endCharIdx := charIdx + a.Len
	if endCharIdx > totalChars {
		endCharIdx = totalChars
	}
	delEnd := r.CharToByteClamped(endCharIdx)

	if delEnd > r.Len() || delStart == delEnd {
		return noopResult(false)
	}

	removed, ok := r.RemoveRange(delStart, delEnd)
	if !ok {
		return noopResult(false)
	}

	return Result{
		Success: true,
		Inverse: Insert{Byte: delStart, Content: string(removed)},
		Start:   delStart,
		OldEnd:  delEnd,
		NewEnd:  delStart,
	}
}

// NoOp applies nothing and always fails. It is used as the inverse of a
// failed action application.
type NoOp struct{}

// Apply implements Action.
func (NoOp) Apply(r *rope.Rope) Result {
	return noopResult(false)
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
