// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake byte sources with predictable chunking and injectable failures.

package fake

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/momentics/hioload-csv/api"
)

// Reader is a fake api.PullSource returning one chunk per Read.
type Reader struct {
	chunks [][]byte
	err    error
	closed atomic.Int32

	Reads   int
	// MaxRead is the largest buffer offered to Read.
	MaxRead int
}

var _ api.PullSource = (*Reader)(nil)

// NewReader returns chunks in order, then err (io.EOF when nil).
func NewReader(err error, chunks ...string) *Reader {
	r := &Reader{err: err}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (r *Reader) Read(p []byte) (int, error) {
	r.Reads++
	if len(p) > r.MaxRead {
		r.MaxRead = len(p)
	}
	for len(r.chunks) > 0 && len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	return n, nil
}

func (r *Reader) Close() error {
	r.closed.Add(1)
	return nil
}

// Closed returns how many times Close was called.
func (r *Reader) Closed() int { return int(r.closed.Load()) }

// Stream is a fake api.PushSource delivering chunks from its own goroutine.
type Stream struct {
	chunks [][]byte
	err    error
	closed atomic.Int32
	done   chan struct{}
}

var _ api.PushSource = (*Stream)(nil)

// NewStream delivers chunks in order, then err, or EOF when err is nil.
func NewStream(err error, chunks ...string) *Stream {
	s := &Stream{err: err, done: make(chan struct{})}
	for _, c := range chunks {
		s.chunks = append(s.chunks, []byte(c))
	}
	return s
}

func (s *Stream) Start(ctx context.Context, sink api.ChunkSink) {
	go func() {
		defer close(s.done)
		for _, c := range s.chunks {
			if !sink(ctx, api.Chunk{Data: c}) {
				return
			}
		}
		if s.err != nil {
			sink(ctx, api.Chunk{Err: s.err})
			return
		}
		sink(ctx, api.Chunk{EOF: true})
	}()
}

// Wait blocks until delivery has stopped.
func (s *Stream) Wait() { <-s.done }

func (s *Stream) Close() error {
	s.closed.Add(1)
	return nil
}

// Closed returns how many times Close was called.
func (s *Stream) Closed() int { return int(s.closed.Load()) }
