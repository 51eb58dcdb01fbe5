//go:build windows

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"go.uber.org/multierr"
	"golang.org/x/sys/windows"
)

func setBuffers(fd uintptr, send, recv int) error {
	h := windows.Handle(fd)
	var err error
	if send > 0 {
		err = multierr.Append(err, windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_SNDBUF, send))
	}
	if recv > 0 {
		err = multierr.Append(err, windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_RCVBUF, recv))
	}
	return err
}
