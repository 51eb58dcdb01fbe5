// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/momentics/hioload-netclient/api"
)

// Classify wraps err into an *api.IOError tagged with its fault. Errors that
// already carry a tag are returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ioe *api.IOError
	if errors.As(err, &ioe) {
		return err
	}
	return &api.IOError{Op: op, Fault: FaultFor(err), Err: err}
}

// FaultFor maps a socket error to its fault tag.
func FaultFor(err error) api.Fault {
	if err == nil {
		return api.FaultNone
	}
	var ioe *api.IOError
	if errors.As(err, &ioe) {
		return ioe.Fault
	}

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return api.FaultEOF
	case errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
		return api.FaultClosed
	case errors.Is(err, context.Canceled):
		return api.FaultCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return api.FaultTimeout
	case errors.Is(err, errors.ErrUnsupported):
		return api.FaultUnsupported
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return api.FaultUnresolved
	}
	if f, ok := errnoFault(err); ok {
		return f
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return api.FaultTimeout
	}
	return api.FaultIO
}
