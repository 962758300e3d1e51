// Package command implements the command dispatch subsystem: a registry
// of variant parsers tried in order, mode-sensitive command-prefix
// rewriting, and fuzzy suggestion ranking. Grounded on the original's
// command palette and command registry (kerbin-core/src/palette/mod.rs,
// kerbin-core/src/states/command_registry.rs, src/command_palette.rs).
package command

import (
	"sort"
	"strings"

	"kerbin/internal/mode"
	"kerbin/internal/wordsplit"
)

// Command is the result of successfully parsing a line of input: the
// matched variant's canonical name plus its positional argument words.
type Command struct {
	Name string
	Args []string
}

// ParseFunc parses a command's argument words (the words after the
// matched name) into a Command, or returns an error describing why the
// fields didn't parse.
type ParseFunc func(name string, args []string) (Command, error)

// Variant is one registered command shape: a canonical name, its
// aliases, a docstring, and the function that parses its arguments.
type Variant struct {
	Canonical string
	Aliases   []string
	Doc       string
	Parse     ParseFunc
}

func (v Variant) names() []string {
	return append([]string{v.Canonical}, v.Aliases...)
}

func (v Variant) matchesName(name string) bool {
	for _, n := range v.names() {
		if n == name {
			return true
		}
	}
	return false
}

// Prefix rewrites unprefixed input by prepending a fixed token sequence
// when the active mode matches and the first word does (or doesn't,
// depending on Include) appear in Names.
type Prefix struct {
	Modes   []byte
	Include bool
	Names   []string
	Tokens  []string
}

func (p Prefix) modeActive(modes *mode.Stack) bool {
	for _, m := range p.Modes {
		if modes.Contains(m) {
			return true
		}
	}
	return false
}

func (p Prefix) nameListed(name string) bool {
	for _, n := range p.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Registry aggregates command variants and prefix rules.
type Registry struct {
	Variants []Variant
	Prefixes []Prefix
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// ParseOutcome is the three-way result of ParseCommand: NoMatch means no
// variant's name matched the first word; Matched with a non-nil Err
// means a variant matched but its field parse failed.
type ParseOutcome struct {
	NoMatch bool
	Command Command
	Err     error
}

// ParseCommand tokenizes line, applies the first matching command
// prefix (if the input doesn't already begin with a prefix's tokens and
// a stacked mode enables one), then tries each registered variant in order.
func (r *Registry) ParseCommand(line string, modes *mode.Stack) ParseOutcome {
	words := wordsplit.Split(strings.TrimSpace(line))
	if len(words) == 1 && words[0] == "" {
		return ParseOutcome{NoMatch: true}
	}

	words = r.applyPrefix(words, modes)

	if len(words) == 0 {
		return ParseOutcome{NoMatch: true}
	}

	name := words[0]
	args := words[1:]
	for _, v := range r.Variants {
		if !v.matchesName(name) {
			continue
		}
		cmd, err := v.Parse(v.Canonical, args)
		return ParseOutcome{Command: cmd, Err: err}
	}
	return ParseOutcome{NoMatch: true}
}

func (r *Registry) applyPrefix(words []string, modes *mode.Stack) []string {
	if len(words) == 0 {
		return words
	}
	for _, p := range r.Prefixes {
		if len(p.Tokens) == 0 || len(words) < len(p.Tokens) {
			continue
		}
		already := true
		for i, tok := range p.Tokens {
			if words[i] != tok {
				already = false
				break
			}
		}
		if already {
			return words
		}
	}
	for _, p := range r.Prefixes {
		if !p.modeActive(modes) {
			continue
		}
		listed := p.nameListed(words[0])
		if listed != p.Include {
			continue
		}
		return append(append([]string{}, p.Tokens...), words...)
	}
	return words
}

// Suggestion is one ranked candidate: the canonical name and its cost
// (lower is better).
type Suggestion struct {
	Name string
	Cost int
}

// Suggestions ranks every registered canonical name against query using
// a permissive subsequence match, sorted ascending by cost. Names that
// don't contain query as a subsequence are excluded.
func (r *Registry) Suggestions(query string) []Suggestion {
	if query == "" {
		return nil
	}
	var out []Suggestion
	for _, v := range r.Variants {
		cost, ok := subsequenceCost(v.Canonical, query)
		if ok {
			out = append(out, Suggestion{Name: v.Canonical, Cost: cost})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost < out[j].Cost })
	return out
}

// Best returns the top-ranked suggestion, if any.
func (r *Registry) Best(query string) (Suggestion, bool) {
	s := r.Suggestions(query)
	if len(s) == 0 {
		return Suggestion{}, false
	}
	return s[0], true
}

// subsequenceCost reports whether query's characters appear in name, in
// order (not necessarily contiguous), case-insensitively, and the cost
// of that match: the number of skipped characters in name between the
// start of the match and its end, plus a penalty for starting late.
// Lower cost means a tighter, earlier match.
func subsequenceCost(name, query string) (int, bool) {
	n := strings.ToLower(name)
	q := []rune(strings.ToLower(query))
	if len(q) == 0 {
		return 0, true
	}

	qi := 0
	firstMatch := -1
	lastMatch := -1
	for ni, ch := range []rune(n) {
		if qi < len(q) && q[qi] == ch {
			if firstMatch < 0 {
				firstMatch = ni
			}
			lastMatch = ni
			qi++
		}
	}
	if qi < len(q) {
		return 0, false
	}

	span := lastMatch - firstMatch + 1
	cost := (span - len(q)) + firstMatch
	return cost, true
}
