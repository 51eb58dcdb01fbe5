//go:build unix

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

func setBuffers(fd uintptr, send, recv int) error {
	var err error
	if send > 0 {
		err = multierr.Append(err, unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, send))
	}
	if recv > 0 {
		err = multierr.Append(err, unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, recv))
	}
	return err
}
