// File: source/reader.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package source

import (
	"errors"
	"io"

	"github.com/momentics/hioload-csv/api"
)

// Reader adapts an io.Reader to api.PullSource. Close runs the registered
// closers in reverse order, innermost decoder first.
type Reader struct {
	r       io.Reader
	closers []func() error
	closed  bool
}

var _ api.PullSource = (*Reader)(nil)

// NewReader wraps r. If r is an io.Closer it is closed by Close.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{r: r}
	if c, ok := r.(io.Closer); ok {
		rd.closers = append(rd.closers, c.Close)
	}
	return rd
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, api.ErrSessionClosed
	}
	return r.r.Read(p)
}

func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
