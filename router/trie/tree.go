package trie

import (
	"fmt"
	"sort"
	"strings"
)

// New returns an empty tree holding only the root node.
func New() *Tree {
	return &Tree{nodes: []node{{parent: -1}}}
}

// Add registers the payload under the given path pattern. The pattern is
// normalized and compiled first; any grammar error leaves the tree
// untouched. Registering a pattern twice replaces the earlier payload.
func (t *Tree) Add(pattern string, payload any) error {
	segments, normalized, err := compilePattern(pattern)
	if err != nil {
		return err
	}

	cur := 0
	for _, seg := range segments {
		child, ok := t.child(cur, seg)
		if !ok {
			t.nodes = append(t.nodes, node{seg: seg, parent: cur})
			child = len(t.nodes) - 1
			t.link(cur, child)
		}
		cur = child
	}

	t.nodes[cur].payload = payload
	t.nodes[cur].pattern = normalized

	return nil
}

// Lookup walks the tree driven by the request segments and returns the
// payload of the unique matching pattern, populating m with the field
// captures in pattern order. On no-match m is left empty.
func (t *Tree) Lookup(segments []string, m *Matches) (any, bool) {
	if m == nil {
		m = &Matches{}
	}
	m.Reset()

	idx := t.tryMatch(segments, 0, m)
	if idx < 0 {
		m.Reset()
		return nil, false
	}

	return t.nodes[idx].payload, true
}

// compilePattern normalizes and parses a pattern string, enforcing the
// one-variadic and unique-identifier rules before any tree mutation.
func compilePattern(pattern string) ([]Segment, string, error) {
	raw := normalizeSegments(pattern)

	segments := make([]Segment, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	variadic := false

	for _, r := range raw {
		seg, err := parseSegment(r, pattern)
		if err != nil {
			return nil, "", err
		}

		if !seg.IsLiteral() {
			if _, dup := seen[seg.ID()]; dup {
				return nil, "", fmt.Errorf("%w: %q in %q", ErrDuplicateField, seg.ID(), pattern)
			}
			seen[seg.ID()] = struct{}{}

			if seg.Mod() == ModifierPlus || seg.Mod() == ModifierStar {
				if variadic {
					return nil, "", fmt.Errorf("%w: %q", ErrDuplicateVariadic, pattern)
				}
				variadic = true
			}
		}

		segments = append(segments, seg)
	}

	return segments, "/" + strings.Join(raw, "/"), nil
}

// child finds the child of parent whose segment occupies the same slot.
func (t *Tree) child(parent int, seg Segment) (int, bool) {
	children := t.nodes[parent].children
	i := sort.Search(len(children), func(i int) bool {
		return !t.nodes[children[i]].seg.less(seg)
	})

	if i < len(children) && t.nodes[children[i]].seg.equal(seg) {
		return children[i], true
	}
	return -1, false
}

// link inserts the child index keeping the children sorted by segment order.
func (t *Tree) link(parent, child int) {
	children := t.nodes[parent].children
	seg := t.nodes[child].seg

	i := sort.Search(len(children), func(i int) bool {
		return !t.nodes[children[i]].seg.less(seg)
	})

	children = append(children, 0)
	copy(children[i+1:], children[i:])
	children[i] = child
	t.nodes[parent].children = children
}

// tryMatch is the recursive descent with ordered backtracking. It returns
// the index of a payload-carrying terminal node, or -1.
func (t *Tree) tryMatch(segs []string, cur int, m *Matches) int {
	// Fast path: while there is exactly one viable child and it has a plain
	// shape, descend without setting up a backtrack point.
	for len(segs) > 0 {
		only := t.soleMatch(cur, segs[0])
		if only < 0 {
			break
		}
		seg := t.nodes[only].seg
		if !seg.IsLiteral() {
			if seg.Mod() != ModifierNone {
				break
			}
			m.bind(seg.ID(), segs[0])
		}
		cur, segs = only, segs[1:]
	}

	n := &t.nodes[cur]

	if len(segs) == 0 {
		if n.payload != nil {
			return cur
		}

		// Out of input: an optional or star child may still finish the
		// pattern by consuming nothing.
		for _, c := range n.children {
			seg := t.nodes[c].seg
			if seg.IsLiteral() || (seg.Mod() != ModifierOptional && seg.Mod() != ModifierStar) {
				continue
			}
			mark := m.mark()
			m.bind(seg.ID(), "")
			if r := t.tryMatch(segs, c, m); r >= 0 {
				return r
			}
			m.rewind(mark)
		}
		return -1
	}

	s := segs[0]

	// Children are sorted, so literals are tried before fields and tighter
	// modifiers before looser ones.
	for _, c := range n.children {
		seg := t.nodes[c].seg
		if !seg.Match(s) {
			continue
		}

		// The mark covers the literal branch too: a failed literal subtree
		// may have bound captures through the fast path and must not leak
		// them into a later sibling's match.
		mark := m.mark()

		if seg.IsLiteral() {
			if r := t.tryMatch(segs[1:], c, m); r >= 0 {
				return r
			}
			m.rewind(mark)
			continue
		}

		switch seg.Mod() {
		case ModifierNone:
			m.bind(seg.ID(), s)
			if r := t.tryMatch(segs[1:], c, m); r >= 0 {
				return r
			}

		case ModifierOptional:
			m.bind(seg.ID(), s)
			if r := t.tryMatch(segs[1:], c, m); r >= 0 {
				return r
			}
			m.rewind(mark)

			m.bind(seg.ID(), "")
			if r := t.tryMatch(segs, c, m); r >= 0 {
				return r
			}

		case ModifierPlus:
			for k := len(segs); k >= 1; k-- {
				m.bind(seg.ID(), strings.Join(segs[:k], "/"))
				if r := t.tryMatch(segs[k:], c, m); r >= 0 {
					return r
				}
				m.rewind(mark)
			}

		case ModifierStar:
			for k := len(segs); k >= 1; k-- {
				m.bind(seg.ID(), strings.Join(segs[:k], "/"))
				if r := t.tryMatch(segs[k:], c, m); r >= 0 {
					return r
				}
				m.rewind(mark)
			}

			m.bind(seg.ID(), "")
			if r := t.tryMatch(segs, c, m); r >= 0 {
				return r
			}
		}

		m.rewind(mark)
	}

	return -1
}

// soleMatch returns the only child of cur matching s, or -1 when zero or
// more than one child could match.
func (t *Tree) soleMatch(cur int, s string) int {
	only := -1
	for _, c := range t.nodes[cur].children {
		if !t.nodes[c].seg.Match(s) {
			continue
		}
		if only >= 0 {
			return -1
		}
		only = c
	}
	return only
}
