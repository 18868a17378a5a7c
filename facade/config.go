// File: facade/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import (
	"github.com/momentics/hioload-csv/api"
	"github.com/momentics/hioload-csv/pool"
)

// Config keys mirrored into api.Control. Setting one of them through
// Control.SetConfig changes the defaults of sessions created afterwards.
const (
	KeyBufferSize    = "buffer_size"
	KeyMaxBufferSize = "max_buffer_size"
	KeyCopyCells     = "copy_cells"
	KeyZeroCopyRows  = "zero_copy_rows"
	KeyProgressEvery = "progress_every"
)

// Config holds parser-wide defaults.
type Config struct {
	BufferSize    int               // Input buffer size for pull sources
	MaxBufferSize int               // Largest single buffer allocation, 0 for no limit
	CopyCells     bool              // Copy cell bytes into a session scratch buffer
	ZeroCopyRows  bool              // Row strings alias engine memory and the row slice is reused
	ProgressEvery int               // Rows between progress callbacks
	Engine        api.EngineOptions // Options passed to Engine.Create
	BatchSize     int               // Events per event-loop batch
	RingCapacity  int               // Event-loop inbox capacity
	EnableMetrics bool              // Publish counters through Control
	EnableDebug   bool              // Register debug probes
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		BufferSize:    pool.DefaultChunkSize,
		MaxBufferSize: 64 << 20,
		ProgressEvery: 10000,
		Engine: api.EngineOptions{
			Delimiter: ',',
			Quote:     '"',
		},
		BatchSize:     16,
		RingCapacity:  1024,
		EnableMetrics: true,
		EnableDebug:   true,
	}
}

// SessionConfig overrides parser defaults for one session. Zero fields keep
// the default, including the fields of Engine; its bool options can only be
// switched on.
type SessionConfig struct {
	Engine        *api.EngineOptions
	BufferSize    int
	Progress      api.ProgressFunc
	ProgressEvery int
}

func (c *Config) asMap() map[string]any {
	return map[string]any{
		KeyBufferSize:    c.BufferSize,
		KeyMaxBufferSize: c.MaxBufferSize,
		KeyCopyCells:     c.CopyCells,
		KeyZeroCopyRows:  c.ZeroCopyRows,
		KeyProgressEvery: c.ProgressEvery,
	}
}

// apply copies recognised keys from m. Values of the wrong type are ignored.
func (c *Config) apply(m map[string]any) {
	if v, ok := intValue(m[KeyBufferSize]); ok && v > 0 {
		c.BufferSize = v
	}
	if v, ok := intValue(m[KeyMaxBufferSize]); ok && v >= 0 {
		c.MaxBufferSize = v
	}
	if v, ok := m[KeyCopyCells].(bool); ok {
		c.CopyCells = v
	}
	if v, ok := m[KeyZeroCopyRows].(bool); ok {
		c.ZeroCopyRows = v
	}
	if v, ok := intValue(m[KeyProgressEvery]); ok && v > 0 {
		c.ProgressEvery = v
	}
}

// mergeEngine overlays the non-zero fields of o on base.
func mergeEngine(base, o api.EngineOptions) api.EngineOptions {
	if o.Delimiter != 0 {
		base.Delimiter = o.Delimiter
	}
	if o.Quote != 0 {
		base.Quote = o.Quote
	}
	if o.MaxColumns != 0 {
		base.MaxColumns = o.MaxColumns
	}
	if o.MaxRowSize != 0 {
		base.MaxRowSize = o.MaxRowSize
	}
	base.NoQuotes = base.NoQuotes || o.NoQuotes
	base.Strict = base.Strict || o.Strict
	return base
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
