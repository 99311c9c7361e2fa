// Package registry holds the set of visible sublayer ids owned by a
// composite layer. Facades mutate it through Add and Remove; the renderer
// reads it through IDs.
package registry

import "sync"

// VisibleSet is an insertion ordered set of sublayer ids. The zero value is
// ready to use.
type VisibleSet struct {
	mu  sync.RWMutex
	ids []int
}

// NewVisibleSet returns a set seeded with ids. Duplicates are dropped.
func NewVisibleSet(ids ...int) *VisibleSet {
	vs := &VisibleSet{}
	for _, id := range ids {
		vs.Add(id)
	}
	return vs
}

func (vs *VisibleSet) indexOf(id int) int {
	for i := range vs.ids {
		if vs.ids[i] == id {
			return i
		}
	}
	return -1
}

// Add appends id if it is not already present. It reports whether the set
// changed.
func (vs *VisibleSet) Add(id int) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.indexOf(id) > -1 {
		return false
	}
	vs.ids = append(vs.ids, id)
	return true
}

// Remove drops id if present. It reports whether the set changed.
func (vs *VisibleSet) Remove(id int) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	i := vs.indexOf(id)
	if i == -1 {
		return false
	}
	vs.ids = append(vs.ids[:i], vs.ids[i+1:]...)
	return true
}

func (vs *VisibleSet) Contains(id int) bool {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.indexOf(id) > -1
}

func (vs *VisibleSet) Len() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.ids)
}

// IDs returns a copy of the visible ids in insertion order.
func (vs *VisibleSet) IDs() []int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	ids := make([]int, len(vs.ids))
	copy(ids, vs.ids)
	return ids
}
