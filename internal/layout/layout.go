// Package layout resolves row/column constraint grids into pixel (cell)
// rectangles for the viewport renderer's chunking. Grounded on the
// original's layout.rs resolve_constraints algorithm.
package layout

import "fmt"

// Kind identifies which Constraint variant is in play.
type Kind int

const (
	KindFixed Kind = iota
	KindPercentage
	KindRange
	KindFlexible
)

// Constraint is one cell's sizing rule along a single axis.
type Constraint struct {
	Kind       Kind
	Fixed      int     // valid for KindFixed
	Percentage float64 // valid for KindPercentage, in [0,100]
	Min, Max   int     // valid for KindRange
}

func Fixed(n int) Constraint       { return Constraint{Kind: KindFixed, Fixed: n} }
func Percent(p float64) Constraint { return Constraint{Kind: KindPercentage, Percentage: p} }
func Range(min, max int) Constraint { return Constraint{Kind: KindRange, Min: min, Max: max} }
func Flexible() Constraint          { return Constraint{Kind: KindFlexible} }

// Error is the layout-resolution error taxonomy from spec.md §7.
type Error struct {
	Kind string // "InvalidPercentages" | "InsufficientSpace" | "ConstraintConflict"
}

func (e *Error) Error() string { return fmt.Sprintf("layout: %s", e.Kind) }

var (
	ErrInvalidPercentages = &Error{Kind: "InvalidPercentages"}
	ErrInsufficientSpace  = &Error{Kind: "InsufficientSpace"}
)

// Rect is a resolved rectangle in cell coordinates.
type Rect struct {
	X, Y, Width, Height int
}

// Resolve allocates `available` units across constraints along one axis,
// returning the size assigned to each, following spec.md §4.6:
//  1. percentages summing over 100 -> InvalidPercentages
//  2. fixed sizes allocated first; overflow -> InsufficientSpace
//  3. percentages allocated against available, scaled down if fixed+pct overflows
//  4. range minimums enforced; overflow -> InsufficientSpace
//  5. residual distributed round-robin among Flexible/Range constraints
func Resolve(constraints []Constraint, available int) ([]int, error) {
	if len(constraints) == 0 {
		return nil, nil
	}

	totalPct := 0.0
	for _, c := range constraints {
		if c.Kind == KindPercentage {
			if c.Percentage < 0 || c.Percentage > 100 {
				return nil, ErrInvalidPercentages
			}
			totalPct += c.Percentage
		}
	}
	if totalPct > 100 {
		return nil, ErrInvalidPercentages
	}

	sizes := make([]int, len(constraints))

	fixedTotal := 0
	for i, c := range constraints {
		if c.Kind == KindFixed {
			sizes[i] = c.Fixed
			fixedTotal += c.Fixed
		}
	}
	if fixedTotal > available {
		return nil, ErrInsufficientSpace
	}

	pctTotal := 0
	for i, c := range constraints {
		if c.Kind == KindPercentage {
			ideal := roundHalfUp(float64(available) * c.Percentage / 100.0)
			sizes[i] = ideal
			pctTotal += ideal
		}
	}

	if fixedTotal+pctTotal > available && pctTotal > 0 {
		shrink := float64(available-fixedTotal) / float64(pctTotal)
		for i, c := range constraints {
			if c.Kind == KindPercentage {
				sizes[i] = roundHalfUp(float64(sizes[i]) * shrink)
			}
		}
	}

	for i, c := range constraints {
		if c.Kind == KindRange && sizes[i] < c.Min {
			sizes[i] = c.Min
		}
	}

	used := 0
	for _, s := range sizes {
		used += s
	}
	if used > available {
		return nil, ErrInsufficientSpace
	}

	remaining := available - used
	var expandable []int
	for i, c := range constraints {
		if c.Kind == KindFlexible || c.Kind == KindRange {
			expandable = append(expandable, i)
		}
	}

	for len(expandable) > 0 && remaining > 0 {
		eligible := 0
		for _, idx := range expandable {
			if sizes[idx] < maxOf(constraints[idx]) {
				eligible++
			}
		}
		if eligible == 0 {
			break
		}
		perItem := remaining / eligible
		if perItem < 1 {
			perItem = 1
		}
		distributed := 0
		for _, idx := range expandable {
			if remaining <= 0 {
				break
			}
			max := maxOf(constraints[idx])
			room := max - sizes[idx]
			if room <= 0 {
				continue
			}
			add := minInt(room, minInt(perItem, remaining))
			sizes[idx] += add
			distributed += add
			remaining -= add
		}
		if distributed == 0 {
			break
		}
	}

	return sizes, nil
}

func maxOf(c Constraint) int {
	switch c.Kind {
	case KindRange:
		return c.Max
	case KindFlexible:
		return int(^uint(0) >> 1) // max int
	default:
		return 0
	}
}

func roundHalfUp(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Grid resolves a grid of rows-of-columns: row heights are resolved
// against totalHeight, then each row's column widths are resolved
// against totalWidth independently.
func Grid(rows [][]Constraint, rowHeights []Constraint, totalWidth, totalHeight int) ([]Rect, error) {
	heights, err := Resolve(rowHeights, totalHeight)
	if err != nil {
		return nil, err
	}
	var out []Rect
	y := 0
	for ri, row := range rows {
		h := 0
		if ri < len(heights) {
			h = heights[ri]
		}
		widths, err := Resolve(row, totalWidth)
		if err != nil {
			return nil, err
		}
		x := 0
		for _, w := range widths {
			out = append(out, Rect{X: x, Y: y, Width: w, Height: h})
			x += w
		}
		y += h
	}
	return out, nil
}
