package tracker

import "sync"

// Registry is the shared read-only lookup of Calculations keyed by
// tracker name. Writers replace whole snapshots; a concurrent reader
// sees either the previous or the new complete Calculations, never a
// partially built one.
type Registry struct {
	mu    sync.RWMutex
	calcs map[string]*Calculations
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{calcs: make(map[string]*Calculations)}
}

// Get returns the current snapshot for a tracker name.
func (r *Registry) Get(name string) (*Calculations, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calcs[name]
	return c, ok
}

// Put publishes a fully built snapshot, replacing any previous one.
func (r *Registry) Put(c *Calculations) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calcs[c.Tracker] = c
}

// Delete removes a tracker's snapshot.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.calcs, name)
}

// ReplaceAll swaps in a complete new set of snapshots at once.
func (r *Registry) ReplaceAll(list []*Calculations) {
	next := make(map[string]*Calculations, len(list))
	for _, c := range list {
		next[c.Tracker] = c
	}
	r.mu.Lock()
	r.calcs = next
	r.mu.Unlock()
}

// Len returns the number of published snapshots.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calcs)
}

// Names lists the tracker names with a published snapshot.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.calcs))
	for name := range r.calcs {
		out = append(out, name)
	}
	return out
}
