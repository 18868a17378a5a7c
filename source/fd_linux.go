//go:build linux
// +build linux

// File: source/fd_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw descriptor reads for regular files.

package source

import (
	"io"

	"golang.org/x/sys/unix"
)

// FD is a pull source over a raw file descriptor.
type FD struct {
	fd     int
	closed bool
}

// OpenFD opens path read-only and hints sequential access to the kernel.
func OpenFD(path string) (*FD, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	// Advisory only; some filesystems reject it.
	_ = unix.Fadvise(fd, 0, 0, unix.FADV_SEQUENTIAL)
	return &FD{fd: fd}, nil
}

func (f *FD) Read(p []byte) (int, error) {
	if f.closed {
		return 0, unix.EBADF
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(f.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (f *FD) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return unix.Close(f.fd)
}
