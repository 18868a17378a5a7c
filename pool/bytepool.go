// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "github.com/momentics/hioload-csv/api"

// BytePool hands out fixed-size chunks for push sources.
type BytePool struct {
	pool *SyncPool[*[]byte]
	size int
}

var _ api.BytePool = (*BytePool)(nil)

// NewBytePool creates a pool of size-byte chunks.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &BytePool{
		pool: NewSyncPool(func() *[]byte {
			buf := make([]byte, size)
			return &buf
		}),
		size: size,
	}
}

// Size returns the chunk size.
func (b *BytePool) Size() int {
	return b.size
}

// Acquire returns a chunk from the pool.
func (b *BytePool) Acquire() []byte {
	return (*b.pool.Get())[:b.size]
}

// Release returns a chunk to the pool. Foreign-sized slices are dropped.
func (b *BytePool) Release(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	buf = buf[:b.size]
	b.pool.Put(&buf)
}
