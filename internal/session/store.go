// File: internal/session/store.go
// Package session
// Author: momentics <momentics@gmail.com>
//
// Slot-indexed arena resolving engine callbacks back to sessions.

package session

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-csv/api"
)

// Registry maps small slot indices to active values. Slots are appended at
// the end and never reused while any value is active; once the active count
// drops to zero the table is reset and numbering restarts at 0.
type Registry[T any] struct {
	mu     sync.RWMutex
	slots  []*T
	active int
	resets uint64
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Register assigns the next slot to v.
func (r *Registry[T]) Register(v *T) (api.Slot, error) {
	if v == nil {
		return -1, fmt.Errorf("register nil session: %w", api.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots = append(r.slots, v)
	r.active++
	return api.Slot(len(r.slots) - 1), nil
}

// Resolve returns the value at slot if it is active.
func (r *Registry[T]) Resolve(slot api.Slot) (*T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if slot < 0 || int(slot) >= len(r.slots) {
		return nil, false
	}
	v := r.slots[slot]
	return v, v != nil
}

// Unregister deactivates slot.
func (r *Registry[T]) Unregister(slot api.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot < 0 || int(slot) >= len(r.slots) || r.slots[slot] == nil {
		return fmt.Errorf("unregister slot %d: %w", slot, api.ErrNotFound)
	}
	r.slots[slot] = nil
	r.active--
	if r.active == 0 {
		clear(r.slots)
		r.slots = r.slots[:0]
		r.resets++
	}
	return nil
}

// Active returns the number of active slots.
func (r *Registry[T]) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Len returns the size of the slot table, including inactive holes.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots)
}

// Resets returns how many times the table was compacted to empty.
func (r *Registry[T]) Resets() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resets
}

// Range applies fn to every active value in slot order.
func (r *Registry[T]) Range(fn func(api.Slot, *T)) {
	r.mu.RLock()
	snapshot := make([]*T, len(r.slots))
	copy(snapshot, r.slots)
	r.mu.RUnlock()
	for i, v := range snapshot {
		if v != nil {
			fn(api.Slot(i), v)
		}
	}
}
