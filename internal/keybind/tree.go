package keybind

import "fmt"

// StepResult reports the outcome of feeding one keypress to a KeyTree.
type StepResult int

const (
	StepSuccess  StepResult = iota // a full sequence matched; action is populated
	StepContinue                   // a prefix matched; more keys expected
	StepReset                      // no registered sequence matches
)

// node is either a leaf (a completed registration) or an internal tree
// node holding the unresolved binds for its children, resolved lazily.
type node struct {
	leaf       bool
	action     string
	childBinds []Unresolved
	children   []*node
}

// KeyTree is the prefix tree resolved keypresses are matched against.
// The first step of each registered sequence is resolved eagerly at
// registration time; every subsequent layer is resolved lazily, only
// once traversal actually reaches it.
type KeyTree struct {
	resolver *Resolver
	roots    map[Resolved]*node

	active       *node
	activeLayer  map[Resolved]int // resolved bind -> index into active.childBinds/children
	repeatDigits string
}

// NewKeyTree creates an empty tree backed by the given resolver.
func NewKeyTree(r *Resolver) *KeyTree {
	return &KeyTree{resolver: r, roots: make(map[Resolved]*node)}
}

// Register inserts a bind sequence mapped to action, resolving the
// sequence's first step immediately.
func (t *KeyTree) Register(seq []Unresolved, action string) error {
	if len(seq) == 0 {
		return fmt.Errorf("keybind: empty keybind sequence")
	}
	firstResolved, err := t.resolver.Resolve(seq[0])
	if err != nil {
		return err
	}
	for _, rk := range firstResolved {
		if len(seq) == 1 {
			t.roots[rk] = &node{leaf: true, action: action}
			continue
		}
		child := buildChild(seq[1:], action)
		if existing, ok := t.roots[rk]; ok {
			if existing.leaf {
				return fmt.Errorf("keybind: conflicting leaf already registered for this key")
			}
			existing.childBinds = append(existing.childBinds, seq[1])
			existing.children = append(existing.children, child)
		} else {
			t.roots[rk] = &node{childBinds: []Unresolved{seq[1]}, children: []*node{child}}
		}
	}
	return nil
}

func buildChild(seq []Unresolved, action string) *node {
	if len(seq) == 1 {
		return &node{leaf: true, action: action}
	}
	return &node{childBinds: []Unresolved{seq[1]}, children: []*node{buildChild(seq[1:], action)}}
}

// Step feeds one resolved keypress to the tree. While the active
// sequence is empty, a single-digit, no-modifier code accumulates into
// a decimal repeat prefix instead of stepping the tree; any other
// keypress consumes the accumulated prefix (default 1) as the
// repetition count for the matched action.
func (t *KeyTree) Step(k Resolved) (result StepResult, action string, repeat int) {
	if t.active == nil && isDigit(k) {
		t.repeatDigits += k.Code
		return StepContinue, "", 0
	}

	repeat = t.consumeRepeat()

	if t.active == nil {
		n, ok := lookupResolved(t.roots, k)
		if !ok {
			return StepReset, "", repeat
		}
		if n.leaf {
			return t.finish(n.action, repeat)
		}
		t.enter(n)
		return StepContinue, "", repeat
	}

	idx, ok := lookupResolved(t.activeLayer, k)
	if !ok {
		t.Reset()
		return StepReset, "", repeat
	}
	child := t.active.children[idx]
	if child.leaf {
		return t.finish(child.action, repeat)
	}
	t.enter(child)
	return StepContinue, "", repeat
}

func (t *KeyTree) finish(action string, repeat int) (StepResult, string, int) {
	t.Reset()
	return StepSuccess, action, repeat
}

func (t *KeyTree) enter(n *node) {
	t.active = n
	layer := make(map[Resolved]int, len(n.childBinds))
	for i, u := range n.childBinds {
		resolved, err := t.resolver.Resolve(u)
		if err != nil {
			continue
		}
		for _, rk := range resolved {
			layer[rk] = i
		}
	}
	t.activeLayer = layer
}

// Reset clears in-progress sequence state (but not the accumulated
// repeat digits, which are consumed separately via consumeRepeat).
func (t *KeyTree) Reset() {
	t.active = nil
	t.activeLayer = nil
}

func (t *KeyTree) consumeRepeat() int {
	if t.repeatDigits == "" {
		return 1
	}
	n := 0
	for _, c := range t.repeatDigits {
		n = n*10 + int(c-'0')
	}
	t.repeatDigits = ""
	if n == 0 {
		return 1
	}
	return n
}

// lookupResolved looks up k in m, an exact match first, then falling
// back to the `*` wildcard entries a bind can register: any-modifier
// with this code, any-code with this modifier mask, and finally
// any-modifier/any-code. A concrete keypress never equals a wildcard
// Resolved by value, so without these fallbacks a `*`-registered bind
// could never be reached by Step.
func lookupResolved[V any](m map[Resolved]V, k Resolved) (V, bool) {
	if v, ok := m[k]; ok {
		return v, true
	}
	if v, ok := m[Resolved{Mods: ModsAny, Code: k.Code}]; ok {
		return v, true
	}
	if v, ok := m[Resolved{Mods: k.Mods, Code: CodeAny}]; ok {
		return v, true
	}
	if v, ok := m[Resolved{Mods: ModsAny, Code: CodeAny}]; ok {
		return v, true
	}
	var zero V
	return zero, false
}

func isDigit(k Resolved) bool {
	return k.Mods == 0 && len(k.Code) == 1 && k.Code[0] >= '0' && k.Code[0] <= '9'
}
