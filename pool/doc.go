// Package pool
// Author: momentics <momentics@gmail.com>
//
// Memory layer for hioload-csv.
// GrowableBuffer backs session input feeds and cell scratch space with an
// exact-fit growth policy; BytePool recycles fixed-size chunks read by push
// sources; SyncPool is the generic object pool both are built on.
package pool

// DefaultChunkSize is the chunk size used when a caller passes none.
const DefaultChunkSize = 64 * 1024
