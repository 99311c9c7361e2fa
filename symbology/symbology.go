// Package symbology holds the style entries that describe how a sublayer is
// drawn, and the generator used for placeholder entries.
package symbology

import "sync"

// Entry is a single style entry of a sublayer legend.
type Entry struct {
	// Name is the label shown next to the symbol
	Name string `json:"name"`
	// Color is a #rrggbb hex colour
	Color string `json:"color"`
	// SVG is the rendered symbol
	SVG string `json:"svg"`
}

// Stack is the ordered, mutable list of entries for one sublayer. UI
// bindings hold on to the *Stack; its contents are replaced wholesale.
type Stack struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewStack returns a stack holding entries.
func NewStack(entries ...Entry) *Stack {
	s := &Stack{}
	s.entries = append(s.entries, entries...)
	return s
}

// Entries returns a copy of the current entries.
func (s *Stack) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	es := make([]Entry, len(s.entries))
	copy(es, s.entries)
	return es
}

func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Replace removes every entry then appends entries, as one step.
func (s *Stack) Replace(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries[:0:0], entries...)
}
