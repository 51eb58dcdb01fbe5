// File: client/endpoint.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"golang.org/x/net/idna"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/transport"
)

// validateEndpoint accepts IP literals and host names that pass IDNA lookup
// rules, and ports 1..65535.
func validateEndpoint(host string, port int) (api.DisconnectCode, error) {
	if err := validateHost(host); err != nil {
		return api.CodeBadHost, err
	}
	if port < 1 || port > 65535 {
		return api.CodeBadPort, fmt.Errorf("port %d: %w", port, api.ErrBadPort)
	}
	return api.CodeClosed, nil
}

func validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("empty host: %w", api.ErrBadHost)
	}
	if _, err := netip.ParseAddr(strings.Trim(host, "[]")); err == nil {
		return nil
	}
	if _, err := idna.Lookup.ToASCII(host); err != nil {
		return fmt.Errorf("host %q: %w: %v", host, api.ErrBadHost, err)
	}
	return nil
}

// connectFailureCode maps a failed dial to its disconnect code.
func connectFailureCode(ctx context.Context, err error) api.DisconnectCode {
	if ctx.Err() != nil {
		return api.CodeAborted
	}
	switch transport.FaultFor(err) {
	case api.FaultCanceled, api.FaultClosed:
		return api.CodeAborted
	case api.FaultUnresolved:
		return api.CodeUnresolved
	default:
		return api.CodeRefused
	}
}
