//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"net"

	"github.com/momentics/hioload-netclient/api"
)

func peerAlive(net.Conn) (bool, error) { return false, api.ErrNotSupported }
