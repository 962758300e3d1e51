// Package keybind parses keybind strings into resolved bind sets,
// assembles them into a prefix tree, and steps that tree one keypress at
// a time to resolve actions, including a leading numeric repeat prefix.
// Grounded on the original's kerbin-input crate (key_bind.rs, parsers.rs,
// resolver.rs, tree.rs).
package keybind

import (
	"fmt"
	"strconv"
	"strings"
)

// Mods is a bitmask of held modifier keys.
type Mods int

const (
	ModCtrl Mods = 1 << iota
	ModAlt
	ModShift
	ModSuper
	ModHyper
	ModMeta
)

// ModsAny is the resolved-bind wildcard: matches any modifier set.
const ModsAny Mods = -1

// CodeAny is the resolved-bind wildcard key code: matches any key.
const CodeAny = "\x00*"

// Resolved is one concrete, steppable key: a modifier mask (or ModsAny)
// and a key code string (or CodeAny).
type Resolved struct {
	Mods Mods
	Code string
}

// elementKind tags which UnresolvedElement variant is populated.
type elementKind int

const (
	kindLiteral elementKind = iota
	kindOneOf
	kindTemplate
	kindCommand
)

// Element is one parsed token before resolution: a literal, a one-of
// group, a template reference, or a dynamic command invocation.
type Element struct {
	Kind    elementKind
	Literal string
	OneOf   []string
	CmdArgs []string // Command name plus arguments; Literal unused for this kind
}

// Unresolved is a parsed keybind: zero or more modifier-element tokens
// plus one key-code element.
type Unresolved struct {
	Mods []Element
	Code Element
}

// CommandProducer yields the literal strings a `$(cmd arg...)` token
// resolves to, at resolve time.
type CommandProducer func(args []string) ([]string, error)

// Resolver expands Unresolved binds into concrete Resolved sets using a
// template map and registered dynamic command producers.
type Resolver struct {
	Templates map[string][]string
	Commands  map[string]CommandProducer
}

// NewResolver creates a resolver with empty template/command tables.
func NewResolver() *Resolver {
	return &Resolver{Templates: make(map[string][]string), Commands: make(map[string]CommandProducer)}
}

// ParseKeybind splits a keybind string on '-', respecting nested `(...)`
// and `$(...)` groups (which may themselves contain dashes), then parses
// all but the last segment as modifiers and the last as the key code.
func ParseKeybind(s string) (Unresolved, error) {
	segs, err := splitSegments(s)
	if err != nil {
		return Unresolved{}, err
	}
	if len(segs) == 0 {
		return Unresolved{}, fmt.Errorf("keybind: empty keybind string")
	}

	codeSeg := segs[len(segs)-1]
	modSegs := segs[:len(segs)-1]

	code, err := parseElement(codeSeg)
	if err != nil {
		return Unresolved{}, err
	}

	mods := make([]Element, 0, len(modSegs))
	for _, m := range modSegs {
		el, err := parseElement(m)
		if err != nil {
			return Unresolved{}, err
		}
		mods = append(mods, el)
	}

	return Unresolved{Mods: mods, Code: code}, nil
}

func splitSegments(s string) ([]string, error) {
	var segs []string
	var cur strings.Builder
	r := []rune(s)
	i := 0
	for i < len(r) {
		ch := r[i]
		switch {
		case ch == '$' && i+1 < len(r) && r[i+1] == '(':
			cur.WriteString("$(")
			i += 2
			depth := 1
			for i < len(r) && depth > 0 {
				c := r[i]
				cur.WriteRune(c)
				if c == '(' {
					depth++
				} else if c == ')' {
					depth--
				}
				i++
			}
			if depth != 0 {
				return nil, fmt.Errorf("keybind: unmatched parentheses in command")
			}
		case ch == '(':
			cur.WriteRune('(')
			i++
			depth := 1
			for i < len(r) && depth > 0 {
				c := r[i]
				cur.WriteRune(c)
				if c == '(' {
					depth++
				} else if c == ')' {
					depth--
				}
				i++
			}
			if depth != 0 {
				return nil, fmt.Errorf("keybind: unmatched parentheses")
			}
		case ch == '%':
			cur.WriteRune('%')
			i++
			for i < len(r) && (isAlnum(r[i]) || r[i] == '_') {
				cur.WriteRune(r[i])
				i++
			}
		case ch == '-':
			if cur.Len() == 0 {
				return nil, fmt.Errorf("keybind: empty segment before dash")
			}
			segs = append(segs, cur.String())
			cur.Reset()
			i++
		default:
			cur.WriteRune(ch)
			i++
		}
	}
	if cur.Len() > 0 {
		segs = append(segs, cur.String())
	} else if len(segs) > 0 {
		return nil, fmt.Errorf("keybind: trailing dash")
	}
	return segs, nil
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func parseElement(s string) (Element, error) {
	if strings.HasPrefix(s, "$(") && strings.HasSuffix(s, ")") {
		inner := s[2 : len(s)-1]
		parts := strings.Fields(inner)
		if len(parts) == 0 {
			return Element{}, fmt.Errorf("keybind: empty command substitution")
		}
		return Element{Kind: kindCommand, Literal: parts[0], CmdArgs: parts[1:]}, nil
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		inner := s[1 : len(s)-1]
		if strings.Contains(inner, "|") {
			opts := strings.Split(inner, "|")
			for i := range opts {
				opts[i] = strings.TrimSpace(opts[i])
			}
			return Element{Kind: kindOneOf, OneOf: opts}, nil
		}
		return Element{Kind: kindTemplate, Literal: inner}, nil
	}
	if strings.HasPrefix(s, "%") {
		return Element{Kind: kindTemplate, Literal: s[1:]}, nil
	}
	return Element{Kind: kindLiteral, Literal: s}, nil
}

func normalizeModName(s string) (Mods, error) {
	switch strings.ToLower(s) {
	case "ctrl", "control":
		return ModCtrl, nil
	case "alt":
		return ModAlt, nil
	case "shift":
		return ModShift, nil
	case "super":
		return ModSuper, nil
	case "hyper":
		return ModHyper, nil
	case "meta":
		return ModMeta, nil
	default:
		return 0, fmt.Errorf("keybind: unknown modifier %q", s)
	}
}

// normalizeCode normalizes a literal key-code token. An uppercase ASCII
// character implies an explicit SHIFT modifier and is folded to lowercase.
func normalizeCode(s string) (code string, impliedShift bool, err error) {
	switch s {
	case "enter", "esc", "backspace", "left", "right", "up", "down",
		"home", "end", "pageup", "pagedown", "tab", "backtab", "delete", "insert":
		return s, false, nil
	case "space":
		return " ", false, nil
	}
	if len(s) > 1 && (s[0] == 'f' || s[0] == 'F') {
		if _, err := strconv.Atoi(s[1:]); err == nil {
			return strings.ToLower(s), false, nil
		}
	}
	r := []rune(s)
	if len(r) == 1 {
		c := r[0]
		if c >= 'A' && c <= 'Z' {
			return strings.ToLower(string(c)), true, nil
		}
		return string(c), false, nil
	}
	return "", false, fmt.Errorf("keybind: unrecognized key literal %q", s)
}

// elementLiterals expands one parsed element into its set of literal
// strings (mod names or key-code names, pre-normalization).
func (r *Resolver) elementLiterals(e Element) ([]string, error) {
	switch e.Kind {
	case kindLiteral:
		return []string{e.Literal}, nil
	case kindOneOf:
		return e.OneOf, nil
	case kindTemplate:
		vs, ok := r.Templates[e.Literal]
		if !ok {
			return nil, fmt.Errorf("keybind: unknown template %q", e.Literal)
		}
		return vs, nil
	case kindCommand:
		prod, ok := r.Commands[e.Literal]
		if !ok {
			return nil, fmt.Errorf("keybind: unregistered dynamic command %q", e.Literal)
		}
		return prod(e.CmdArgs)
	default:
		return nil, fmt.Errorf("keybind: unknown element kind")
	}
}

// Resolve expands an Unresolved bind into the cartesian product of its
// modifier-element and code-element literal sets, one Resolved per
// combination.
func (r *Resolver) Resolve(u Unresolved) ([]Resolved, error) {
	modSets := make([][]Mods, 0, len(u.Mods))
	for _, e := range u.Mods {
		lits, err := r.elementLiterals(e)
		if err != nil {
			return nil, err
		}
		var set []Mods
		for _, l := range lits {
			if l == "*" {
				set = append(set, ModsAny)
				continue
			}
			m, err := normalizeModName(l)
			if err != nil {
				return nil, err
			}
			set = append(set, m)
		}
		modSets = append(modSets, set)
	}

	codeLits, err := r.elementLiterals(u.Code)
	if err != nil {
		return nil, err
	}

	var out []Resolved
	for _, cl := range codeLits {
		code := cl
		impliedShift := false
		if cl != "*" {
			code, impliedShift, err = normalizeCode(cl)
			if err != nil {
				return nil, err
			}
		} else {
			code = CodeAny
		}

		combos := cartesianMods(modSets)
		for _, combo := range combos {
			mask := Mods(0)
			any := false
			for _, m := range combo {
				if m == ModsAny {
					any = true
					continue
				}
				mask |= m
			}
			if impliedShift {
				mask |= ModShift
			}
			if any {
				out = append(out, Resolved{Mods: ModsAny, Code: code})
			} else {
				out = append(out, Resolved{Mods: mask, Code: code})
			}
		}
		if len(combos) == 0 {
			mask := Mods(0)
			if impliedShift {
				mask |= ModShift
			}
			out = append(out, Resolved{Mods: mask, Code: code})
		}
	}
	return out, nil
}

func cartesianMods(sets [][]Mods) [][]Mods {
	if len(sets) == 0 {
		return nil
	}
	result := [][]Mods{{}}
	for _, set := range sets {
		var next [][]Mods
		for _, prefix := range result {
			for _, m := range set {
				combo := append(append([]Mods(nil), prefix...), m)
				next = append(next, combo)
			}
		}
		result = next
	}
	return result
}
