// Package registry tracks the live model handles: the mapping from model
// identifier to a loaded execution object. It is plain bookkeeping; load
// and unload policy live in the orchestrator.
package registry

import (
	"errors"
	"sort"
	"sync"
	"time"

	"synthd/internal/runtime"
	"synthd/pkg/types"
)

// Handle pairs a model identifier with its loaded execution object and the
// metadata declared at load time.
type Handle struct {
	ID         string
	Capability types.Capability
	Precision  types.Precision
	Source     string
	LoadedAt   time.Time

	exec      runtime.Executor
	closeOnce sync.Once
	closeErr  error
}

// NewHandle wraps a freshly constructed execution object.
func NewHandle(id string, capability types.Capability, prec types.Precision, source string, exec runtime.Executor) *Handle {
	return &Handle{
		ID:         id,
		Capability: capability,
		Precision:  prec,
		Source:     source,
		LoadedAt:   time.Now(),
		exec:       exec,
	}
}

// Executor returns the execution object backing this handle.
func (h *Handle) Executor() runtime.Executor { return h.exec }

// Release frees the execution object. Safe to call repeatedly; only the
// first call reaches the backend.
func (h *Handle) Release() error {
	h.closeOnce.Do(func() { h.closeErr = h.exec.Close() })
	return h.closeErr
}

// Describe reports the handle for status listings.
func (h *Handle) Describe() types.LoadedModel {
	return types.LoadedModel{
		ID:           h.ID,
		Capability:   h.Capability,
		Precision:    h.Precision,
		Source:       h.Source,
		LoadedAtUnix: h.LoadedAt.Unix(),
	}
}

// Registry holds at most one handle per model identifier.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

// Insert stores h under its identifier and returns any handle it displaced.
// The caller owns releasing a displaced handle.
func (r *Registry) Insert(h *Handle) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior := r.handles[h.ID]
	r.handles[h.ID] = h
	return prior
}

// Lookup returns the handle under id, if any.
func (r *Registry) Lookup(id string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[id]
	return h, ok
}

// Remove detaches the handle under id and releases its execution object.
// The bool reports whether a handle existed; the handle is gone from the
// registry even when the release itself fails.
func (r *Registry) Remove(id string) (bool, error) {
	r.mu.Lock()
	h, ok := r.handles[id]
	if ok {
		delete(r.handles, id)
	}
	r.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, h.Release()
}

// Clear removes every handle, releasing each execution object.
func (r *Registry) Clear() error {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]*Handle)
	r.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := h.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len reports the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// IDs lists the live identifiers in stable order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handles))
	for id := range r.handles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Snapshot describes every live handle, sorted by identifier.
func (r *Registry) Snapshot() []types.LoadedModel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.LoadedModel, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h.Describe())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
