// File: source/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package source

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/momentics/hioload-csv/api"
	"github.com/momentics/hioload-csv/pool"
)

// Stream turns a blocking reader into an api.PushSource. Each chunk is read
// into a buffer from the pool and returned to it once the consumer calls
// Chunk.Done.
type Stream struct {
	r    io.Reader
	pool *pool.BytePool

	once sync.Once
	done chan struct{}
}

var _ api.PushSource = (*Stream)(nil)

// NewStream reads r in chunks of the pool size. A nil bp selects a pool of
// pool.DefaultChunkSize.
func NewStream(r io.Reader, bp *pool.BytePool) *Stream {
	if bp == nil {
		bp = pool.NewBytePool(pool.DefaultChunkSize)
	}
	return &Stream{r: r, pool: bp, done: make(chan struct{})}
}

// Start reads on a new goroutine until EOF, a read error, ctx cancellation
// or a sink refusal. Only the first call starts delivery.
func (s *Stream) Start(ctx context.Context, sink api.ChunkSink) {
	started := false
	s.once.Do(func() { started = true })
	if !started {
		return
	}
	go func() {
		defer close(s.done)
		for {
			if ctx.Err() != nil {
				return
			}
			buf := s.pool.Acquire()
			n, err := s.r.Read(buf)
			if n > 0 {
				c := api.Chunk{Data: buf[:n], Release: func() { s.pool.Release(buf) }}
				if !sink(ctx, c) {
					return
				}
			} else {
				s.pool.Release(buf)
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					sink(ctx, api.Chunk{EOF: true})
				} else {
					sink(ctx, api.Chunk{Err: err})
				}
				return
			}
		}
	}()
}

// Wait blocks until a started Stream stops delivering.
func (s *Stream) Wait() {
	<-s.done
}

// Close closes the underlying reader if it is an io.Closer.
func (s *Stream) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
