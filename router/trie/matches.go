package trie

// Capture is one (field id, value) pair produced by a successful lookup.
type Capture struct {
	ID    string
	Value string
}

// Matches collects the field captures of a lookup in pattern order. A tree
// empties the buffer before reuse and truncates it back to empty when the
// lookup does not match.
type Matches struct {
	captures []Capture
}

// Get returns the value captured for the given field id.
func (m *Matches) Get(id string) (string, bool) {
	for _, c := range m.captures {
		if c.ID == id {
			return c.Value, true
		}
	}
	return "", false
}

// Index returns the capture at position i, in capture order.
func (m *Matches) Index(i int) Capture { return m.captures[i] }

// Len returns the number of captures.
func (m *Matches) Len() int { return len(m.captures) }

// IsEmpty reports whether there are no captures.
func (m *Matches) IsEmpty() bool { return len(m.captures) == 0 }

// Range calls fn for every capture in order until fn returns false.
func (m *Matches) Range(fn func(id, value string) bool) {
	for _, c := range m.captures {
		if !fn(c.ID, c.Value) {
			return
		}
	}
}

// Reset truncates the buffer to empty, keeping the backing storage.
func (m *Matches) Reset() { m.captures = m.captures[:0] }

func (m *Matches) bind(id, value string) {
	m.captures = append(m.captures, Capture{ID: id, Value: value})
}

func (m *Matches) mark() int { return len(m.captures) }

func (m *Matches) rewind(mark int) { m.captures = m.captures[:mark] }
