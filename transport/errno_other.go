//go:build !unix && !windows

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "github.com/momentics/hioload-netclient/api"

func errnoFault(error) (api.Fault, bool) { return api.FaultNone, false }
