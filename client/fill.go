// File: client/fill.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/transport"
)

// fill reads the stream into the largest contiguous free run of the inbound
// buffer, growing it when full. A zero-byte read or EOF is an orderly close
// by the peer; any other failure, including growth past the maximum
// capacity, is a transfer failure.
func (s *session) fill() error {
	if !s.await() {
		return nil
	}
	for {
		span, err := s.in.FreeSpan()
		if err != nil {
			s.log.Warn("inbound buffer exhausted", zap.Int("capacity", s.in.Cap()), zap.Error(err))
			_ = s.terminate(api.CodeTransferFailed, err)
			return err
		}
		n, err := s.stream.Read(span)
		if cerr := s.in.CommitSpan(n); cerr != nil {
			_ = s.terminate(api.CodeTransferFailed, cerr)
			return cerr
		}
		if n > 0 {
			s.received.Add(uint64(n))
			s.c.metrics.Received(n)
			if hook := s.c.onReceive; hook != nil {
				hook(n)
			}
		}
		switch {
		case err != nil:
			if s.ended.Load() {
				return nil
			}
			fault := transport.FaultFor(err)
			if fault == api.FaultEOF {
				_ = s.terminate(api.CodePeerClosed, nil)
				return nil
			}
			s.log.Debug("fill read failed", zap.Stringer("fault", fault), zap.Error(err))
			_ = s.terminate(api.CodeTransferFailed, err)
			return err
		case n == 0:
			_ = s.terminate(api.CodePeerClosed, nil)
			return nil
		}
	}
}
