package classify

import "golang.org/x/net/html"

// Marked is the set of elements already consumed by a rule during one run.
// It is created per run and passed to every stage.
type Marked struct {
	set map[*html.Node]struct{}
}

// NewMarked returns an empty set.
func NewMarked() *Marked {
	return &Marked{set: make(map[*html.Node]struct{})}
}

// Has reports whether n was already consumed.
func (m *Marked) Has(n *html.Node) bool {
	_, ok := m.set[n]
	return ok
}

// Add records n and reports whether it was new.
func (m *Marked) Add(n *html.Node) bool {
	if m.Has(n) {
		return false
	}
	m.set[n] = struct{}{}
	return true
}

// Len is the number of distinct elements consumed.
func (m *Marked) Len() int { return len(m.set) }
