// File: api/source.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Byte-source capability with two variants: caller-driven pull and
// event-driven push.

package api

import "context"

// ByteSource is the common part of PullSource and PushSource.
type ByteSource interface {
	Close() error
}

// PullSource is read on demand by the feeder.
type PullSource interface {
	ByteSource
	Read(p []byte) (int, error)
}

// Chunk is one delivery from a PushSource. Exactly one of Data, EOF or Err
// is meaningful. Release, when set, returns Data to its pool after the chunk
// has been fed.
type Chunk struct {
	Data    []byte
	EOF     bool
	Err     error
	Release func()
}

// Done releases the chunk data if it is pooled.
func (c Chunk) Done() {
	if c.Release != nil {
		c.Release()
	}
}

// ChunkSink accepts chunks from a PushSource. It returns false when the
// consumer no longer wants data; the source must stop delivering then.
type ChunkSink func(ctx context.Context, c Chunk) bool

// PushSource delivers chunks asynchronously. Start returns immediately;
// delivery ends with a chunk carrying EOF or Err, or when sink returns false.
type PushSource interface {
	ByteSource
	Start(ctx context.Context, sink ChunkSink)
}
