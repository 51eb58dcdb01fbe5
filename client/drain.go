// File: client/drain.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"io"

	"go.uber.org/zap"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/core/buffer"
	"github.com/momentics/hioload-netclient/transport"
)

// drain parks on the gate and writes queued snapshots to the stream in FIFO
// order. Each snapshot sends exactly its captured range, never bytes written
// after the capture. The first write failure terminates the session.
func (s *session) drain() error {
	if !s.await() {
		return nil
	}
	for {
		if err := s.gate.Wait(s.done); err != nil {
			return nil
		}
		for {
			snap, ok := s.queue.Dequeue()
			if !ok {
				break
			}
			if err := s.send(snap); err != nil {
				if s.ended.Load() {
					return nil
				}
				s.log.Debug("drain write failed", zap.Stringer("fault", transport.FaultFor(err)), zap.Error(err))
				_ = s.terminate(api.CodeTransferFailed, err)
				return err
			}
		}
	}
}

func (s *session) send(snap buffer.Snapshot) error {
	first, second := s.outC.Pending(snap)
	if err := writeFull(s.stream, first); err != nil {
		return err
	}
	if err := writeFull(s.stream, second); err != nil {
		return err
	}
	n := s.outC.Release(snap)
	s.sent.Add(uint64(n))
	s.c.metrics.Sent(n)
	s.c.metrics.Drained()
	s.log.Debug("drained", zap.Int("bytes", n), zap.Uint64("mark", snap.Mark()))
	return nil
}

// writeFull continues short writes until p is written.
func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
