// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs for chunk and object reuse.

package api

// BytePool provides reusable []byte chunks for push sources.
type BytePool interface {
	// Acquire returns a slice of exactly the pool size.
	Acquire() []byte

	// Release returns a buffer to the pool.
	Release(buf []byte)
}

// ObjectPool provides generic pooling of Go objects allocated transiently.
type ObjectPool[T any] interface {
	Get() T
	Put(obj T)
}
