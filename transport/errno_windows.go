//go:build windows

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"

	"github.com/momentics/hioload-netclient/api"
)

func errnoFault(err error) (api.Fault, bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return api.FaultNone, false
	}
	switch errno {
	case windows.WSAECONNREFUSED, windows.WSAEHOSTUNREACH, windows.WSAENETUNREACH:
		return api.FaultRefused, true
	case windows.WSAECONNRESET, windows.WSAECONNABORTED:
		return api.FaultReset, true
	case windows.WSAETIMEDOUT:
		return api.FaultTimeout, true
	case windows.WSAEOPNOTSUPP:
		return api.FaultUnsupported, true
	case windows.WSAENOTSOCK:
		return api.FaultClosed, true
	}
	return api.FaultNone, false
}
