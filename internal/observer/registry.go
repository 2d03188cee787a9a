package observer

import "sync"

// Registry is a set of listeners of one kind.
//
// The zero value is ready to use. Registry is safe for concurrent use.
// Listeners are compared with ==, so register pointers (or other comparable
// values) rather than structs holding funcs.
type Registry[L comparable] struct {
	mu        sync.Mutex
	listeners []L // copy-on-write; never mutated in place
}

// Register adds l. It returns false if l is the zero value or already present.
func (r *Registry[L]) Register(l L) bool {
	var zero L
	if l == zero {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.listeners {
		if existing == l {
			return false
		}
	}

	next := make([]L, len(r.listeners), len(r.listeners)+1)
	copy(next, r.listeners)
	r.listeners = append(next, l)
	return true
}

// Unregister removes l. It returns false if l was not registered.
func (r *Registry[L]) Unregister(l L) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.listeners {
		if existing != l {
			continue
		}
		next := make([]L, 0, len(r.listeners)-1)
		next = append(next, r.listeners[:i]...)
		next = append(next, r.listeners[i+1:]...)
		r.listeners = next
		return true
	}
	return false
}

// Len returns the number of registered listeners.
func (r *Registry[L]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// Clear removes every listener.
func (r *Registry[L]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = nil
}

// Each calls fn for every listener registered when Each was called.
func (r *Registry[L]) Each(fn func(L)) {
	for _, l := range r.snapshot() {
		fn(l)
	}
}

func (r *Registry[L]) snapshot() []L {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listeners
}
