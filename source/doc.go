// Package source
// Author: momentics <momentics@gmail.com>
//
// Byte sources for parse sessions: pull readers over files, descriptors and
// compressed streams, and a push Stream that reads on its own goroutine and
// hands pooled chunks to a sink.
package source
