// File: pool/growable.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Exact-fit growable buffer. Capacity never shrinks in place; a request that
// does not fit releases the old region and allocates exactly the requested size.

package pool

import (
	"fmt"

	"github.com/momentics/hioload-csv/api"
)

// GrowableBuffer is an owned byte region sized to the largest request seen.
type GrowableBuffer struct {
	data   []byte
	limit  int
	allocs int
}

// Ensure compliance with api.Buffer interface.
var _ api.Buffer = (*GrowableBuffer)(nil)

// NewGrowableBuffer returns an empty buffer. A positive limit caps the size of
// a single allocation.
func NewGrowableBuffer(limit int) *GrowableBuffer {
	return &GrowableBuffer{limit: limit}
}

// EnsureCapacity reuses the region when it already holds n bytes.
func (b *GrowableBuffer) EnsureCapacity(n int) (bool, error) {
	if n < 0 {
		return false, fmt.Errorf("ensure capacity %d: %w", n, api.ErrInvalidArgument)
	}
	if len(b.data) >= n {
		return false, nil
	}
	if b.limit > 0 && n > b.limit {
		return false, fmt.Errorf("buffer of %d bytes exceeds limit %d: %w", n, b.limit, api.ErrResourceExhausted)
	}
	b.data = nil
	b.data = make([]byte, n)
	b.allocs++
	return true, nil
}

// Bytes returns the whole region.
func (b *GrowableBuffer) Bytes() []byte {
	return b.data
}

// Cap returns the current capacity.
func (b *GrowableBuffer) Cap() int {
	return len(b.data)
}

// Allocs returns how many regions have been allocated over the buffer's life.
func (b *GrowableBuffer) Allocs() int {
	return b.allocs
}

// Release drops the region.
func (b *GrowableBuffer) Release() {
	b.data = nil
}
