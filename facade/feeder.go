// File: facade/feeder.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stream feeding. Pull sources are read on demand through the read
// trampoline on the caller's goroutine. Push sources deliver chunks from
// their own goroutine; the chunks are queued on the parser event loop, which
// feeds them one at a time.

package facade

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/momentics/hioload-csv/api"
)

// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
const maxEmptyReads = 100

// Consume parses src to the end, including Finish, and closes it. The
// session is released when Consume returns. Cancelling ctx aborts the
// session and returns ctx.Err(). Consume must not be called from a row
// handler or from the parser event loop.
func (s *Session) Consume(ctx context.Context, src api.ByteSource) error {
	if src == nil {
		return fmt.Errorf("nil source: %w", api.ErrInvalidArgument)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Debugf("session %d: close source: %v", s.slot, err)
		}
	}()
	if err := s.lc.Begin(); err != nil {
		return err
	}
	switch v := src.(type) {
	case api.PullSource:
		return s.consumePull(ctx, v)
	case api.PushSource:
		return s.consumePush(ctx, v)
	}
	return s.fail(fmt.Errorf("unsupported source %T: %w", src, api.ErrInvalidArgument))
}

func (s *Session) consumePull(ctx context.Context, src api.PullSource) error {
	grew, err := s.input.EnsureCapacity(s.bufferSize)
	if err != nil {
		return s.fail(err)
	}
	if grew {
		s.handle.SetInputBuffer(s.input.Bytes())
	}
	s.src = src
	s.handle.SetReadCallback(s.p.readFn)

	for {
		if err := ctx.Err(); err != nil {
			s.Abort()
			return err
		}
		st := s.step(s.handle.ParseMore)
		switch st {
		case api.StatusOK:
			if s.lc.State().Terminal() {
				return s.settle(st)
			}
			continue
		case api.StatusNoMoreInput:
			if s.srcErr != nil {
				return s.fail(&api.SourceError{Op: "read", Err: s.srcErr})
			}
			return s.Finish()
		}
		return s.settle(st)
	}
}

// pull fills buf from the pull source. It returns 0 at end of input or on
// a read error, which is kept for consumePull.
func (s *Session) pull(buf []byte) int {
	if s.halted || s.srcDone || s.src == nil {
		return 0
	}
	for empty := 0; empty < maxEmptyReads; empty++ {
		n, err := s.src.Read(buf)
		if err != nil {
			s.srcDone = true
			if !errors.Is(err, io.EOF) {
				s.srcErr = err
			}
		}
		if n > 0 {
			s.bytesRead.Add(uint64(n))
			return n
		}
		if err != nil {
			return 0
		}
	}
	s.srcDone = true
	s.srcErr = io.ErrNoProgress
	return 0
}

func (s *Session) consumePush(ctx context.Context, src api.PushSource) error {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := s.lc.Done()
	src.Start(sctx, func(ctx context.Context, c api.Chunk) bool {
		select {
		case <-stop:
			c.Done()
			return false
		default:
		}
		ev := api.Event{Slot: s.slot, Owner: s, Chunk: c}
		if s.p.loop.Post(ev) {
			return true
		}
		if err := s.p.loop.PostWait(ctx, ev); err != nil {
			c.Done()
			return false
		}
		return true
	})

	select {
	case <-s.releasedCh:
		return s.lc.Err()
	case <-ctx.Done():
	}
	select {
	case <-s.releasedCh:
		// Ended on its own while ctx was being cancelled.
		return s.lc.Err()
	default:
	}
	if err := s.p.loop.Call(context.Background(), s.Abort); err != nil {
		// The loop is gone, so nothing else drives this session.
		s.Abort()
	}
	<-s.releasedCh
	return ctx.Err()
}

// HandleEvent feeds one pushed chunk on the event loop goroutine. Chunks
// whose session has been released, or whose slot now belongs to another
// session, are dropped.
func (p *Parser) HandleEvent(ev api.Event) {
	defer ev.Chunk.Done()
	s, ok := p.registry.Resolve(ev.Slot)
	if !ok || ev.Owner != s {
		log.Debugf("dropping chunk for released slot %d", ev.Slot)
		return
	}
	s.handleChunk(ev.Chunk)
}

func (s *Session) handleChunk(c api.Chunk) {
	if s.lc.State().Terminal() {
		return
	}
	switch {
	case c.Err != nil:
		s.fail(&api.SourceError{Op: "stream", Err: c.Err})
	case c.EOF:
		if err := s.Finish(); err != nil {
			log.Debugf("session %d finish: %v", s.slot, err)
		}
	default:
		if err := s.ParseBytes(c.Data); err != nil {
			log.Debugf("session %d chunk: %v", s.slot, err)
		}
	}
}
