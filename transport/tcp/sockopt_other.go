//go:build !unix && !windows

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import "github.com/momentics/hioload-netclient/api"

func setBuffers(fd uintptr, send, recv int) error { return api.ErrNotSupported }
