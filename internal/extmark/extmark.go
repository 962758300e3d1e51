// Package extmark implements namespaced, priority-ordered, range-anchored
// decorations ("extmarks") that track a buffer's edits.
package extmark

import "sort"

// ID identifies an extmark for the lifetime of the buffer it belongs to.
type ID uint64

// Gravity governs which side of a zero-width insertion point a mark's
// start absorbs, when that insertion happens exactly at the mark start.
type Gravity int

const (
	GravityLeft Gravity = iota
	GravityRight
)

// Adjustment governs how a mark's range reacts to edits that overlap it.
type Adjustment int

const (
	// AdjustTrack grows/shrinks/shifts the range to stay anchored to the
	// same logical text (the default, and most common, policy).
	AdjustTrack Adjustment = iota
	// AdjustFixed leaves the byte range untouched no matter what edits occur.
	AdjustFixed
	// AdjustDeleteOnDelete removes the mark outright when a delete edit
	// fully contains its range.
	AdjustDeleteOnDelete
)

// Decoration is a tagged variant attached to an extmark. Implementations
// are Highlight, VirtText, Overlay, CursorDecoration, and FullElement.
type Decoration interface {
	isDecoration()
}

// Style describes a combinable text style: optional fg/bg/underline
// colors (empty string means "unset", not "none") and an attribute
// bitmask that OR-combines across layers.
type Style struct {
	Fg            string
	Bg            string
	UnderlineColor string
	Attrs          Attr
}

// Attr is a bitmask of text attributes (bold, italic, underline, ...).
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrStrikethrough
	AttrReverse
)

// Combine overlays `over` on top of `base`: a non-empty field in `over`
// replaces the base field's value, and attribute bits OR together.
func (base Style) Combine(over Style) Style {
	out := base
	if over.Fg != "" {
		out.Fg = over.Fg
	}
	if over.Bg != "" {
		out.Bg = over.Bg
	}
	if over.UnderlineColor != "" {
		out.UnderlineColor = over.UnderlineColor
	}
	out.Attrs |= over.Attrs
	return out
}

// Highlight paints the marked range with a style.
type Highlight struct{ Style Style }

func (Highlight) isDecoration() {}

// VirtText inserts virtual (non-buffer) text styled inline, rendered
// immediately after the character at the mark's anchor.
type VirtText struct {
	Text  string
	Style Style
}

func (VirtText) isDecoration() {}

// Positioning controls how an Overlay element tracks scrolling.
type Positioning int

const (
	RelativeToChar Positioning = iota
	RelativeToLine
	ViewportFixed
)

// Overlay anchors an arbitrary rendered widget (buffer reference is
// opaque to this package — it's whatever the renderer knows how to
// draw) at an offset from the mark, with a z-index for overlap
// resolution and an optional clip rectangle width/height.
type Overlay struct {
	OffsetCol, OffsetRow int
	Buffer               any
	ZIndex               int
	ClipW, ClipH         int
	Positioning          Positioning
}

func (Overlay) isDecoration() {}

// CursorDecoration marks where a (possibly synthetic) cursor should be
// drawn; only the highest-priority one at the primary caret is
// effective per frame.
type CursorDecoration struct{ Style Style }

func (CursorDecoration) isDecoration() {}

// FullElement reserves extra line height after the anchor line to draw
// an embedded element (e.g. a diagnostic panel or image).
type FullElement struct {
	Height int
	Buffer any
}

func (FullElement) isDecoration() {}

// Mark is one stored extmark.
type Mark struct {
	ID             ID
	Namespace      string
	Start, End     int
	Priority       int
	Gravity        Gravity
	Adjustment     Adjustment
	ExpandOnInsert bool
	Decorations    []Decoration
	FileVersion    uint64
}

// Builder collects the fields for a new mark before it is minted an ID.
type Builder struct {
	Namespace      string
	Start, End     int
	Priority       int
	Gravity        Gravity
	Adjustment     Adjustment
	ExpandOnInsert bool
	Decorations    []Decoration
}

// Edit describes one rope mutation for migration purposes: the byte
// range [Start, OldEnd) in the pre-edit rope became [Start, NewEnd) in
// the post-edit rope.
type Edit struct {
	Start, OldEnd, NewEnd int
}

// Store owns all extmarks for a single buffer.
type Store struct {
	marks   map[ID]*Mark
	nextID  ID
	version uint64
}

// NewStore creates an empty extmark store.
func NewStore() *Store {
	return &Store{marks: make(map[ID]*Mark)}
}

// SetFileVersion records the buffer version new marks are stamped with.
func (s *Store) SetFileVersion(v uint64) {
	s.version = v
}

// Add mints an ID from the store's monotonic counter and stores the mark.
func (s *Store) Add(b Builder) ID {
	s.nextID++
	id := s.nextID
	start, end := b.Start, b.End
	if end < start {
		start, end = end, start
	}
	s.marks[id] = &Mark{
		ID:             id,
		Namespace:      b.Namespace,
		Start:          start,
		End:            end,
		Priority:       b.Priority,
		Gravity:        b.Gravity,
		Adjustment:     b.Adjustment,
		ExpandOnInsert: b.ExpandOnInsert,
		Decorations:    append([]Decoration(nil), b.Decorations...),
		FileVersion:    s.version,
	}
	return id
}

// Remove deletes a mark by ID, reporting whether it existed.
func (s *Store) Remove(id ID) bool {
	if _, ok := s.marks[id]; !ok {
		return false
	}
	delete(s.marks, id)
	return true
}

// ClearNamespace removes every mark in the given namespace.
func (s *Store) ClearNamespace(ns string) {
	for id, m := range s.marks {
		if m.Namespace == ns {
			delete(s.marks, id)
		}
	}
}

// Update replaces a mark's decorations in place.
func (s *Store) Update(id ID, decorations []Decoration) bool {
	m, ok := s.marks[id]
	if !ok {
		return false
	}
	m.Decorations = append([]Decoration(nil), decorations...)
	return true
}

// Get returns the mark by ID, if present.
func (s *Store) Get(id ID) (*Mark, bool) {
	m, ok := s.marks[id]
	return m, ok
}

// Query returns marks overlapping the half-open [start, end) range,
// sorted ascending by priority, tie-broken by ID.
func (s *Store) Query(start, end int) []*Mark {
	var out []*Mark
	for _, m := range s.marks {
		if overlaps(m.Start, m.End, start, end) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func overlaps(s1, e1, s2, e2 int) bool {
	// Half-open overlap; a zero-width mark [p,p) overlaps a query that
	// contains p.
	if s1 == e1 {
		return s1 >= s2 && s1 < e2
	}
	return s1 < e2 && e1 > s2
}

// Migrate applies one edit event to every stored mark according to its
// adjustment policy, in order of the supplied edits.
func (s *Store) Migrate(edits []Edit) {
	for _, e := range edits {
		s.migrateOne(e)
	}
}

func (s *Store) migrateOne(e Edit) {
	delta := e.NewEnd - e.OldEnd
	pureInsert := e.OldEnd == e.Start
	for id, m := range s.marks {
		switch m.Adjustment {
		case AdjustFixed:
			continue
		case AdjustDeleteOnDelete:
			if m.Start >= e.Start && m.End <= e.OldEnd && !(m.Start == m.End && e.Start == e.OldEnd) {
				delete(s.marks, id)
				continue
			}
			fallthrough
		default: // AdjustTrack, and DeleteOnDelete marks that didn't qualify for removal
			m.Start, m.End = trackAdjust(m.Start, m.End, e, delta, pureInsert, m.Gravity, m.ExpandOnInsert)
		}
	}
}

func trackAdjust(s, en int, e Edit, delta int, pureInsert bool, gravity Gravity, expandOnInsert bool) (int, int) {
	// Entirely before the edit: unaffected.
	if en < e.Start {
		return s, en
	}
	// Entirely after the edit: shift both ends.
	if s > e.OldEnd {
		return s + delta, en + delta
	}

	zeroWidth := s == en

	// Start handling.
	var newStart int
	switch {
	case s < e.Start:
		newStart = s
	case s == e.Start:
		if pureInsert && gravity == GravityRight {
			newStart = e.Start + delta
		} else {
			newStart = e.Start
		}
	case s > e.OldEnd:
		newStart = s + delta
	default:
		newStart = e.Start
	}

	if zeroWidth {
		// A zero-width mark stays zero-width; only its anchor moves,
		// per the gravity rule just applied to newStart.
		return newStart, newStart
	}

	// End handling.
	var newEnd int
	switch {
	case en <= e.OldEnd:
		if expandOnInsert && pureInsert && s == e.Start {
			newEnd = en + delta
		} else {
			newEnd = e.Start + (en - e.OldEnd)
			if newEnd < e.Start {
				newEnd = e.Start
			}
		}
	default:
		newEnd = en + delta
	}

	if newEnd < newStart {
		newEnd = newStart
	}
	return newStart, newEnd
}
