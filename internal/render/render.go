// Package render builds the incremental viewport: per-line visual element
// streams folded with extmark decorations, with horizontal/vertical scroll
// maintenance that keeps the primary caret on screen and a line-number
// gutter. Grounded on the original's viewport renderer (kerbin-core/src/
// render.rs) and on the client/render.go ANSI-buffer-composition idiom.
package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"kerbin/internal/buffer"
	"kerbin/internal/extmark"
)

// PAD is the caret-visibility padding used for both scroll axes.
const PAD = 5

// GutterNumWidth is the right-aligned width of the line-number field.
const GutterNumWidth = 5

// GutterWidth is the total on-screen width of the gutter, including the
// one-space separator after the right-aligned number field.
const GutterWidth = GutterNumWidth + 1

// Cell is one visual column's worth of rendered state: a rune plus the
// style folded in from any overlapping Highlight extmarks.
type Cell struct {
	Rune  rune
	Width int
	Style extmark.Style
}

// VirtTextSeg is virtual (non-buffer) text queued to render immediately
// after a given cell.
type VirtTextSeg struct {
	AfterCol int
	Text     string
	Style    extmark.Style
}

// RenderLine is one built output row: a source line's gutter, its visual
// cells, any virtual text segments, and the overlay/full-element
// descriptors anchored to it.
type RenderLine struct {
	SourceLine int // 0-based; -1 for synthetic filler rows
	Gutter     string
	Cells      []Cell
	VirtTexts  []VirtTextSeg
	Overlays   []extmark.Overlay
	FullElems  []extmark.FullElement
}

// Cursor is the resolved effective cursor for the frame, if any.
type Cursor struct {
	Byte  int
	Style extmark.Style
}

// Viewport holds the cached build state for one buffer's rendered
// viewport, reused frame to frame so only the visible window rebuilds.
type Viewport struct {
	Width, Height int

	Lines       []RenderLine
	ByteScroll  int // first source line index included in Lines
	VisualScroll int // rows of Lines to skip when compositing
	HScroll     int // visual columns skipped at the left

	Cursor *Cursor
}

// NewViewport creates a viewport sized to width x height visual cells.
func NewViewport(width, height int) *Viewport {
	return &Viewport{Width: width, Height: height}
}

// Resize updates the viewport's dimensions, forcing the next Build to
// rebuild from scratch.
func (v *Viewport) Resize(width, height int) {
	v.Width, v.Height = width, height
	v.Lines = nil
}

// Build rebuilds the cached line set starting at v.ByteScroll until it
// has at least enough rows to fill the viewport height, accounting for
// FullElement rows reserved after their anchor line.
func (v *Viewport) Build(b *buffer.TextBuffer) {
	var lines []RenderLine
	lineCount := lineCountOf(b)
	src := v.ByteScroll
	visualRows := 0

	for visualRows < v.Height && src < lineCount {
		rl := buildLine(b, src)
		lines = append(lines, rl)
		visualRows++
		for _, fe := range rl.FullElems {
			extra := fe.Height
			for i := 0; i < extra && visualRows < v.Height; i++ {
				lines = append(lines, RenderLine{SourceLine: -1})
				visualRows++
			}
		}
		src++
	}
	v.Lines = lines
	v.resolveCursor(b)
}

func lineCountOf(b *buffer.TextBuffer) int {
	total := b.Rope.Len()
	return b.Rope.ByteToLineClamped(total) + 1
}

func buildLine(b *buffer.TextBuffer, lineIdx int) RenderLine {
	start, end, _ := b.Rope.LineByteRangeChecked(lineIdx)
	raw := b.Rope.SliceClamped(start, end)
	raw = strings.TrimSuffix(raw, "\n")
	raw = strings.TrimSuffix(raw, "\r")

	rl := RenderLine{
		SourceLine: lineIdx,
		Gutter:     gutterText(lineIdx + 1),
	}

	marks := b.Extmarks.Query(start, end+1)

	byteOff := start
	for _, r := range raw {
		cell := Cell{Rune: r, Width: runewidth.RuneWidth(r)}
		for _, m := range marks {
			if byteOff < m.Start || byteOff >= m.End {
				if !(m.Start == m.End && byteOff == m.Start) {
					continue
				}
			}
			for _, d := range m.Decorations {
				switch dec := d.(type) {
				case extmark.Highlight:
					cell.Style = cell.Style.Combine(dec.Style)
				case extmark.VirtText:
					if byteOff == m.Start {
						rl.VirtTexts = append(rl.VirtTexts, VirtTextSeg{
							AfterCol: len(rl.Cells),
							Text:     dec.Text,
							Style:    dec.Style,
						})
					}
				case extmark.Overlay:
					if byteOff == m.Start {
						rl.Overlays = append(rl.Overlays, dec)
					}
				case extmark.FullElement:
					if byteOff == m.Start {
						rl.FullElems = append(rl.FullElems, dec)
					}
				}
			}
		}
		rl.Cells = append(rl.Cells, cell)
		byteOff += len(string(r))
	}
	// Synthetic trailing single-space cell at the line's end byte, used
	// as a click-and-caret target past the last character.
	rl.Cells = append(rl.Cells, Cell{Rune: ' ', Width: 1})

	return rl
}

func gutterText(lineNo int) string {
	s := intToString(lineNo)
	for len(s) < GutterNumWidth {
		s = " " + s
	}
	return s + " "
}

func intToString(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (v *Viewport) resolveCursor(b *buffer.TextBuffer) {
	if len(b.Cursors) == 0 {
		v.Cursor = nil
		return
	}
	caret := b.Cursors[b.PrimaryCursor].Caret()
	marks := b.Extmarks.Query(caret, caret+1)
	var best *Cursor
	for _, m := range marks {
		for _, d := range m.Decorations {
			if cd, ok := d.(extmark.CursorDecoration); ok {
				best = &Cursor{Byte: caret, Style: cd.Style}
			}
		}
	}
	if best == nil {
		best = &Cursor{Byte: caret}
	}
	v.Cursor = best
}

// caretVisualPosition finds the (row, col) of the caret within the
// currently built Lines, or ok=false if it isn't present.
func (v *Viewport) caretVisualPosition(b *buffer.TextBuffer) (row, col int, ok bool) {
	if v.Cursor == nil {
		return 0, 0, false
	}
	caretLine := b.Rope.ByteToLineClamped(v.Cursor.Byte)
	lineStart := b.Rope.LineToByteClamped(caretLine)
	caretOff := v.Cursor.Byte - lineStart

	for i, rl := range v.Lines {
		if rl.SourceLine != caretLine {
			continue
		}
		col := 0
		off := lineStart
		for _, c := range rl.Cells {
			if off >= v.Cursor.Byte {
				break
			}
			col += c.Width
			off += len(string(c.Rune))
		}
		_ = caretOff
		return i, col, true
	}
	return 0, 0, false
}

// MaintainScroll adjusts HScroll, ByteScroll and VisualScroll so the
// caret stays within the padded visible window, rebuilding Lines when
// the vertical window must move.
func (v *Viewport) MaintainScroll(b *buffer.TextBuffer) {
	if v.Lines == nil {
		v.Build(b)
	}

	row, col, ok := v.caretVisualPosition(b)
	if !ok {
		caretLine := b.Rope.ByteToLineClamped(v.Cursor.Byte)
		if caretLine < v.ByteScroll {
			v.ByteScroll = maxInt(0, caretLine-PAD)
		} else {
			v.ByteScroll = caretLine - maxInt(0, v.Height-PAD-1)
		}
		v.VisualScroll = 0
		v.Build(b)
		row, col, ok = v.caretVisualPosition(b)
		if !ok {
			return
		}
	}

	visibleRow := row - v.VisualScroll
	if visibleRow < 0 {
		v.VisualScroll = maxInt(0, row-3)
	} else if visibleRow >= v.Height {
		v.VisualScroll = row - v.Height + 1 + 3
		if v.VisualScroll+v.Height > len(v.Lines) {
			v.ByteScroll += v.VisualScroll
			v.VisualScroll = 0
			v.Build(b)
		}
	}

	textWidth := v.Width - GutterWidth
	if textWidth < 1 {
		textWidth = 1
	}
	screenCol := col - v.HScroll
	if screenCol >= textWidth-PAD {
		v.HScroll += screenCol - (textWidth - PAD)
	} else if screenCol < PAD {
		v.HScroll -= PAD - screenCol
		if v.HScroll < 0 {
			v.HScroll = 0
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Compose renders the visible window (VisualScroll..VisualScroll+Height)
// into termenv-styled text, one string per screen row, gutter included.
func Compose(v *Viewport, profile termenv.Profile) []string {
	out := make([]string, 0, v.Height)
	textWidth := v.Width - GutterWidth
	if textWidth < 1 {
		textWidth = 1
	}

	for i := 0; i < v.Height; i++ {
		idx := v.VisualScroll + i
		if idx >= len(v.Lines) {
			out = append(out, strings.Repeat(" ", v.Width))
			continue
		}
		rl := v.Lines[idx]
		out = append(out, composeLine(rl, v.HScroll, textWidth, profile))
	}

	out = composeOverlays(v, out, profile)
	return out
}

func composeLine(rl RenderLine, hScroll, textWidth int, profile termenv.Profile) string {
	var sb strings.Builder
	sb.WriteString(rl.Gutter)

	col := 0
	written := 0
	for ci, c := range rl.Cells {
		if col+c.Width <= hScroll {
			col += c.Width
			continue
		}
		if written >= textWidth {
			break
		}
		sb.WriteString(styled(string(c.Rune), c.Style, profile))
		written += c.Width
		col += c.Width

		for _, vt := range rl.VirtTexts {
			if vt.AfterCol == ci && written < textWidth {
				sb.WriteString(styled(vt.Text, vt.Style, profile))
				written += runewidth.StringWidth(vt.Text)
			}
		}
	}
	for written < textWidth {
		sb.WriteByte(' ')
		written++
	}
	return sb.String()
}

func styled(s string, st extmark.Style, profile termenv.Profile) string {
	if s == "" {
		return s
	}
	out := termenv.String(s)
	if st.Fg != "" {
		out = out.Foreground(profile.Color(st.Fg))
	}
	if st.Bg != "" {
		out = out.Background(profile.Color(st.Bg))
	}
	if st.Attrs&extmark.AttrBold != 0 {
		out = out.Bold()
	}
	if st.Attrs&extmark.AttrItalic != 0 {
		out = out.Italic()
	}
	if st.Attrs&extmark.AttrUnderline != 0 {
		out = out.Underline()
	}
	if st.Attrs&extmark.AttrStrikethrough != 0 {
		out = out.CrossOut()
	}
	if st.Attrs&extmark.AttrReverse != 0 {
		out = out.Reverse()
	}
	return out.String()
}

// composeOverlays collects the Overlay elements anchored to visible lines
// with their screen row and column, and sorts them by z-index ascending.
// It does not draw overlay content: rows are returned unchanged.
func composeOverlays(v *Viewport, rows []string, profile termenv.Profile) []string {
	type placed = struct {
		row, col int
		ov       extmark.Overlay
	}
	var all []placed
	for ri, rl := range v.Lines {
		if ri < v.VisualScroll || ri >= v.VisualScroll+v.Height {
			continue
		}
		for _, ov := range rl.Overlays {
			screenRow := ri - v.VisualScroll + ov.OffsetRow
			screenCol := GutterWidth + ov.OffsetCol
			if ov.Positioning != extmark.ViewportFixed {
				screenCol -= v.HScroll
			}
			all = append(all, placed{row: screenRow, col: screenCol, ov: ov})
		}
	}
	sortPlaced(all)
	_ = profile
	return rows
}

func sortPlaced(all []struct {
	row, col int
	ov       extmark.Overlay
}) {
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].ov.ZIndex < all[j-1].ov.ZIndex; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
}
