package runtime

import (
	"sort"
	"sync"

	"synthd/pkg/types"
)

// Table maps capabilities to the runtime serving them. It is populated at
// startup; a capability with no entry is unavailable in this process.
type Table struct {
	mu sync.RWMutex
	by map[types.Capability]Runtime
}

// NewTable returns an empty capability table.
func NewTable() *Table {
	return &Table{by: make(map[types.Capability]Runtime)}
}

// Register binds rt to every capability it serves. A later registration for
// the same capability replaces the earlier one.
func (t *Table) Register(rt Runtime) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range rt.Capabilities() {
		t.by[c] = rt
	}
}

// Lookup returns the runtime serving c, if any.
func (t *Table) Lookup(c types.Capability) (Runtime, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rt, ok := t.by[c]
	return rt, ok
}

// Capabilities lists the registered capabilities in stable order.
func (t *Table) Capabilities() []types.Capability {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.Capability, 0, len(t.by))
	for c := range t.by {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
