//go:build unix

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-netclient/api"
)

func errnoFault(err error) (api.Fault, bool) {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return api.FaultNone, false
	}
	switch errno {
	case unix.ECONNREFUSED, unix.EHOSTUNREACH, unix.ENETUNREACH:
		return api.FaultRefused, true
	case unix.ECONNRESET, unix.ECONNABORTED, unix.EPIPE:
		return api.FaultReset, true
	case unix.ETIMEDOUT:
		return api.FaultTimeout, true
	case unix.EOPNOTSUPP, unix.ENOPROTOOPT:
		return api.FaultUnsupported, true
	case unix.EBADF:
		return api.FaultClosed, true
	}
	return api.FaultNone, false
}
