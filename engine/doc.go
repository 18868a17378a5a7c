// Package engine
// Author: momentics <momentics@gmail.com>
//
// Reference delimited-text engine implementing api.Engine.
//
// The tokenizer is an incremental byte state machine: all state needed to
// resume in the middle of a field, a quoted section or a CRLF pair survives
// between Feed calls, so the row sequence does not depend on how the input is
// chunked. Rows are reported through the row trampoline with the configured
// slot; cell views point into a per-handle row buffer that is reused after the
// callback returns.
//
// Quoting follows RFC 4180 with the usual relaxations: a quote inside an
// unquoted field, or text after a closing quote, is kept literally unless
// Strict is set. Empty lines produce no row.
package engine
