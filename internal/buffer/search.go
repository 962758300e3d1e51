package buffer

import "regexp"

// Match is one regex match's byte range within the buffer.
type Match struct {
	Start, End int
}

// Search finds every non-overlapping match of pattern in the buffer,
// in byte order. Grounded on the original's regex-over-rope search
// (kerbin-core/src/regex.rs uses a chunk cursor adapter for ropey; this
// rewrite materializes the buffer once and delegates to the standard
// library's regexp — no third-party library in the pack offers regex
// matching directly over a rope/chunk cursor, so this one component is
// stdlib-only, noted in DESIGN.md).
func (b *TextBuffer) Search(pattern string) ([]Match, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	content := b.Rope.Bytes()
	idxs := re.FindAllIndex(content, -1)
	out := make([]Match, len(idxs))
	for i, pair := range idxs {
		out[i] = Match{Start: pair[0], End: pair[1]}
	}
	return out, nil
}

// SearchForward finds the first match at or after fromByte, wrapping
// around to the start of the buffer if nothing is found after it.
func (b *TextBuffer) SearchForward(pattern string, fromByte int) (Match, bool, error) {
	matches, err := b.Search(pattern)
	if err != nil {
		return Match{}, false, err
	}
	if len(matches) == 0 {
		return Match{}, false, nil
	}
	for _, m := range matches {
		if m.Start >= fromByte {
			return m, true, nil
		}
	}
	return matches[0], true, nil
}
