// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics, configuration control, and debug introspection layer for
// hioload-csv parsers.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads and merged updates with reload listeners
//   - Session, row and byte counters
//   - Debug probe registration and state export
//
// This package is build-tag-partitioned for platform probes.
package control
