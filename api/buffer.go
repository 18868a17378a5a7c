// Package api
// Author: momentics
//
// Owned, resizable byte regions used for input feeds and cell scratch space.

package api

// Buffer is a growable byte region owned by exactly one session.
type Buffer interface {
	// EnsureCapacity makes Bytes at least n long. It reports whether the
	// region was replaced; a replaced region must be re-assigned to the engine.
	EnsureCapacity(n int) (bool, error)

	// Bytes returns the whole region.
	Bytes() []byte

	// Cap returns the current capacity.
	Cap() int

	// Release frees the region. The buffer may be reused afterwards.
	Release()
}
