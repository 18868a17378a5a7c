// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-csv components.

package benchmarks

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/momentics/hioload-csv/engine"
	"github.com/momentics/hioload-csv/facade"
	"github.com/momentics/hioload-csv/pool"
	"github.com/momentics/hioload-csv/source"
)

func sampleInput(rows int) []byte {
	var buf bytes.Buffer
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&buf, "%d,name-%d,\"quoted, %d\",%d.5\n", i, i, i, i*3)
	}
	return buf.Bytes()
}

func newParser(b *testing.B, cfg *facade.Config) *facade.Parser {
	b.Helper()
	p, err := facade.New(engine.New(), cfg)
	if err != nil {
		b.Fatal(err)
	}
	if err := p.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { p.Shutdown() })
	return p
}

// BenchmarkGrowableBufferReuse measures the steady-state path of EnsureCapacity.
func BenchmarkGrowableBufferReuse(b *testing.B) {
	buf := pool.NewGrowableBuffer(0)
	for i := 0; i < b.N; i++ {
		if _, err := buf.EnsureCapacity(4096 - i%64); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseBytes feeds the same input in 4 KiB chunks through one
// session per iteration, once per cell strategy.
func BenchmarkParseBytes(b *testing.B) {
	input := sampleInput(2000)
	for _, mode := range []struct {
		name      string
		copyCells bool
		zeroCopy  bool
		withCells bool
	}{
		{"nodata", false, false, false},
		{"data-direct", false, false, true},
		{"data-copy", true, false, true},
		{"data-zerocopy", true, true, true},
	} {
		b.Run(mode.name, func(b *testing.B) {
			cfg := facade.DefaultConfig()
			cfg.CopyCells = mode.copyCells
			cfg.ZeroCopyRows = mode.zeroCopy
			p := newParser(b, cfg)
			b.SetBytes(int64(len(input)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				var s *facade.Session
				var err error
				if mode.withCells {
					s, err = p.NewDataSession(func([]string, any) {}, nil, nil)
				} else {
					s, err = p.NewSession(func(*facade.Session, any) {}, nil, nil)
				}
				if err != nil {
					b.Fatal(err)
				}
				for off := 0; off < len(input); off += 4096 {
					end := min(off+4096, len(input))
					if err := s.ParseBytes(input[off:end]); err != nil {
						b.Fatal(err)
					}
				}
				if err := s.Finish(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkConsume compares pull reads with pushed chunks through the event loop.
func BenchmarkConsume(b *testing.B) {
	input := string(sampleInput(2000))
	chunks := pool.NewBytePool(pool.DefaultChunkSize)
	for _, push := range []bool{false, true} {
		name := "pull"
		if push {
			name = "push"
		}
		b.Run(name, func(b *testing.B) {
			p := newParser(b, nil)
			b.SetBytes(int64(len(input)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s, err := p.NewSession(func(*facade.Session, any) {}, nil, nil)
				if err != nil {
					b.Fatal(err)
				}
				rd := source.NewReader(strings.NewReader(input))
				if push {
					err = s.Consume(context.Background(), source.NewStream(rd, chunks))
				} else {
					err = s.Consume(context.Background(), rd)
				}
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
