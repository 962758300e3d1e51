// Package rope implements the UTF-8 text storage used by TextBuffer: a
// byte-indexed, line-aware string store with paired checked/clamped
// accessors for every byte/char/line conversion.
package rope

import (
	"bytes"
	"unicode/utf8"
)

// ChunkSize bounds how large a single chunk returned by Chunks can be.
// The rope itself is stored as one contiguous buffer; chunking is only
// exposed as an iteration granularity for callers that want to stream
// text (e.g. the viewport renderer walking a visible region) without
// materializing the whole buffer at once.
const ChunkSize = 4096

// Rope holds UTF-8 text as a single buffer plus a lazily (re)built index
// of line-start byte offsets. The index is invalidated on every mutation
// and rebuilt on first access after that.
type Rope struct {
	data       []byte
	lineStarts []int // byte offset of the start of each line; always includes 0
	dirty      bool
}

// New creates a Rope from the given initial content.
func New(s string) *Rope {
	r := &Rope{data: []byte(s)}
	r.reindex()
	return r
}

// Empty creates a zero-length Rope.
func Empty() *Rope {
	return New("")
}

// Len returns the length of the rope in bytes.
func (r *Rope) Len() int {
	return len(r.data)
}

// String returns the entire rope content as a string.
func (r *Rope) String() string {
	return string(r.data)
}

// Clone returns a deep copy of the rope, safe to mutate independently.
func (r *Rope) Clone() *Rope {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	c := &Rope{data: data}
	c.reindex()
	return c
}

// Bytes returns a copy of the rope content.
func (r *Rope) Bytes() []byte {
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}

func (r *Rope) reindex() {
	starts := make([]int, 0, bytesCountLines(r.data)+1)
	starts = append(starts, 0)
	for i := 0; i < len(r.data); i++ {
		if r.data[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	r.lineStarts = starts
	r.dirty = false
}

func bytesCountLines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

func (r *Rope) ensureIndex() {
	if r.dirty || r.lineStarts == nil {
		r.reindex()
	}
}

// --- mutation ---

// InsertBytes inserts content at the given byte offset. The offset must
// be within [0, Len()] and fall on a UTF-8 char boundary; callers that
// aren't sure should round with CharBoundaryBefore first.
func (r *Rope) InsertBytes(byteIdx int, content []byte) bool {
	if byteIdx < 0 || byteIdx > len(r.data) {
		return false
	}
	if !r.isBoundary(byteIdx) {
		return false
	}
	grown := make([]byte, 0, len(r.data)+len(content))
	grown = append(grown, r.data[:byteIdx]...)
	grown = append(grown, content...)
	grown = append(grown, r.data[byteIdx:]...)
	r.data = grown
	r.dirty = true
	return true
}

// RemoveRange deletes the half-open byte range [start, end) and returns
// the removed bytes. Both endpoints must land on char boundaries.
func (r *Rope) RemoveRange(start, end int) ([]byte, bool) {
	if start < 0 || end > len(r.data) || start > end {
		return nil, false
	}
	if !r.isBoundary(start) || !r.isBoundary(end) {
		return nil, false
	}
	removed := make([]byte, end-start)
	copy(removed, r.data[start:end])
	shrunk := make([]byte, 0, len(r.data)-(end-start))
	shrunk = append(shrunk, r.data[:start]...)
	shrunk = append(shrunk, r.data[end:]...)
	r.data = shrunk
	r.dirty = true
	return removed, true
}

func (r *Rope) isBoundary(byteIdx int) bool {
	if byteIdx == 0 || byteIdx == len(r.data) {
		return true
	}
	return utf8.RuneStart(r.data[byteIdx])
}

// CharBoundaryBefore rounds byteIdx down to the nearest UTF-8 char
// boundary at or before it, clamped to [0, Len()].
func (r *Rope) CharBoundaryBefore(byteIdx int) int {
	if byteIdx < 0 {
		return 0
	}
	if byteIdx >= len(r.data) {
		return len(r.data)
	}
	i := byteIdx
	for i > 0 && !utf8.RuneStart(r.data[i]) {
		i--
	}
	return i
}

// --- checked/clamped byte<->char<->line conversions ---

// CharCount returns the number of runes in the rope.
func (r *Rope) CharCount() int {
	return utf8.RuneCount(r.data)
}

// LineCount returns the number of lines (at least 1, since the final
// unterminated segment counts as a line).
func (r *Rope) LineCount() int {
	r.ensureIndex()
	return len(r.lineStarts)
}

// ByteToCharChecked converts a byte offset to a char (rune) index.
// Returns (idx, true) if byteIdx is in [0, Len()], else (0, false).
func (r *Rope) ByteToCharChecked(byteIdx int) (int, bool) {
	if byteIdx < 0 || byteIdx > len(r.data) {
		return 0, false
	}
	return utf8.RuneCount(r.data[:byteIdx]), true
}

// ByteToCharClamped saturates byteIdx into range before converting.
func (r *Rope) ByteToCharClamped(byteIdx int) int {
	c, _ := r.ByteToCharChecked(clamp(byteIdx, 0, len(r.data)))
	return c
}

// CharToByteChecked converts a char index to a byte offset.
func (r *Rope) CharToByteChecked(charIdx int) (int, bool) {
	if charIdx < 0 {
		return 0, false
	}
	i := 0
	n := 0
	for i < len(r.data) {
		if n == charIdx {
			return i, true
		}
		_, size := utf8.DecodeRune(r.data[i:])
		i += size
		n++
	}
	if n == charIdx {
		return i, true
	}
	return 0, false
}

// CharToByteClamped saturates charIdx into [0, CharCount()] before converting.
func (r *Rope) CharToByteClamped(charIdx int) int {
	total := r.CharCount()
	charIdx = clamp(charIdx, 0, total)
	b, _ := r.CharToByteChecked(charIdx)
	return b
}

// ByteToLineChecked returns the 0-based line index containing byteIdx.
func (r *Rope) ByteToLineChecked(byteIdx int) (int, bool) {
	if byteIdx < 0 || byteIdx > len(r.data) {
		return 0, false
	}
	r.ensureIndex()
	// Binary search for the last lineStart <= byteIdx.
	lo, hi := 0, len(r.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if r.lineStarts[mid] <= byteIdx {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, true
}

// ByteToLineClamped saturates byteIdx before converting.
func (r *Rope) ByteToLineClamped(byteIdx int) int {
	l, _ := r.ByteToLineChecked(clamp(byteIdx, 0, len(r.data)))
	return l
}

// LineToByteChecked returns the byte offset of the start of lineIdx.
func (r *Rope) LineToByteChecked(lineIdx int) (int, bool) {
	r.ensureIndex()
	if lineIdx < 0 || lineIdx >= len(r.lineStarts) {
		return 0, false
	}
	return r.lineStarts[lineIdx], true
}

// LineToByteClamped saturates lineIdx before converting.
func (r *Rope) LineToByteClamped(lineIdx int) int {
	r.ensureIndex()
	lineIdx = clamp(lineIdx, 0, len(r.lineStarts)-1)
	b, _ := r.LineToByteChecked(lineIdx)
	return b
}

// LineByteRangeChecked returns [start, end) spanning lineIdx's content
// plus its terminator (so end is either the next line's start or Len()).
func (r *Rope) LineByteRangeChecked(lineIdx int) (start, end int, ok bool) {
	r.ensureIndex()
	if lineIdx < 0 || lineIdx >= len(r.lineStarts) {
		return 0, 0, false
	}
	start = r.lineStarts[lineIdx]
	if lineIdx+1 < len(r.lineStarts) {
		end = r.lineStarts[lineIdx+1]
	} else {
		end = len(r.data)
	}
	return start, end, true
}

// LineContentChecked returns a line's text with its line terminator
// (LF or CRLF) stripped.
func (r *Rope) LineContentChecked(lineIdx int) (string, bool) {
	start, end, ok := r.LineByteRangeChecked(lineIdx)
	if !ok {
		return "", false
	}
	line := r.data[start:end]
	line = bytes.TrimSuffix(line, []byte("\r\n"))
	line = bytes.TrimSuffix(line, []byte("\n"))
	return string(line), true
}

// LineContentClamped saturates lineIdx before returning content.
func (r *Rope) LineContentClamped(lineIdx int) string {
	r.ensureIndex()
	lineIdx = clamp(lineIdx, 0, len(r.lineStarts)-1)
	s, _ := r.LineContentChecked(lineIdx)
	return s
}

// LineContentLenChecked returns a line's content length in chars,
// excluding its terminator.
func (r *Rope) LineContentLenChecked(lineIdx int) (int, bool) {
	s, ok := r.LineContentChecked(lineIdx)
	if !ok {
		return 0, false
	}
	return utf8.RuneCountInString(s), true
}

// SliceChecked returns the substring of the half-open byte range
// [start, end). Returns ("", false) if out of bounds.
func (r *Rope) SliceChecked(start, end int) (string, bool) {
	if start < 0 || end > len(r.data) || start > end {
		return "", false
	}
	return string(r.data[start:end]), true
}

// SliceClamped saturates both endpoints into [0, Len()] before slicing.
func (r *Rope) SliceClamped(start, end int) string {
	start = clamp(start, 0, len(r.data))
	end = clamp(end, 0, len(r.data))
	if start > end {
		start, end = end, start
	}
	s, _ := r.SliceChecked(start, end)
	return s
}

// Chunks splits the current content into ChunkSize-byte pieces for
// streaming iteration, without allocating the whole string at once
// beyond the copies chunks themselves require.
func (r *Rope) Chunks() [][]byte {
	var out [][]byte
	for i := 0; i < len(r.data); i += ChunkSize {
		end := i + ChunkSize
		if end > len(r.data) {
			end = len(r.data)
		}
		end = r.CharBoundaryBefore(end)
		if end <= i {
			end = len(r.data)
		}
		chunk := make([]byte, end-i)
		copy(chunk, r.data[i:end])
		out = append(out, chunk)
		i = end - ChunkSize // compensate for loop's += ChunkSize
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
