package concurrency_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-csv/api"
	"github.com/momentics/hioload-csv/core/concurrency"
)

type recorder struct {
	mu    sync.Mutex
	slots []api.Slot
}

func (r *recorder) HandleEvent(ev concurrency.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots = append(r.slots, ev.Slot)
}

func (r *recorder) snapshot() []api.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.Slot(nil), r.slots...)
}

func TestEventLoopOrder(t *testing.T) {
	loop := concurrency.NewEventLoop(4, 64)
	rec := &recorder{}
	loop.RegisterHandler(rec)
	go loop.Run()
	defer loop.Stop()

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		if err := loop.PostWait(ctx, concurrency.Event{Slot: api.Slot(i)}); err != nil {
			t.Fatal(err)
		}
	}
	// A call is queued behind every chunk event posted before it.
	if err := loop.Call(ctx, func() {}); err != nil {
		t.Fatal(err)
	}
	got := rec.snapshot()
	if len(got) != 50 {
		t.Fatalf("expected 50 events, got %d", len(got))
	}
	for i, s := range got {
		if s != api.Slot(i) {
			t.Fatalf("event %d delivered out of order: %d", i, s)
		}
	}
	if loop.Processed() != 51 {
		t.Errorf("processed %d", loop.Processed())
	}
}

func TestEventLoopStopReleasesChunks(t *testing.T) {
	loop := concurrency.NewEventLoop(1, 8)
	released := 0
	loop.Post(concurrency.Event{Chunk: api.Chunk{Data: []byte("x"), Release: func() { released++ }}})
	loop.Stop()
	if released != 1 {
		t.Errorf("expected queued chunk released on Stop, released=%d", released)
	}
	if err := loop.PostWait(context.Background(), concurrency.Event{}); !errors.Is(err, concurrency.ErrLoopStopped) {
		t.Errorf("PostWait after Stop: %v", err)
	}
	if loop.Post(concurrency.Event{}) {
		t.Error("Post accepted after Stop")
	}
}

func TestEventLoopPostWaitContext(t *testing.T) {
	loop := concurrency.NewEventLoop(1, 1)
	if !loop.Post(concurrency.Event{}) {
		t.Fatal("first post rejected")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := loop.PostWait(ctx, concurrency.Event{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	loop.Stop()
}
