// File: client/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A session is one established connection: the bound stream, both rings,
// the snapshot queue and the two background tasks.

package client

import (
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/core/buffer"
	"github.com/momentics/hioload-netclient/core/concurrency"
)

type session struct {
	c      *Client
	id     string
	log    *zap.Logger
	stream api.Stream

	// outbound: the application produces, the drain consumes
	out  buffer.Producer
	outC buffer.Consumer
	// inbound: the fill task produces, the application consumes
	in  buffer.Producer
	inC buffer.Consumer

	queue   *concurrency.Queue[buffer.Snapshot]
	gate    *concurrency.Gate
	flushed uint64 // mark of the last queued snapshot, producer-owned

	group    errgroup.Group
	started  chan struct{}
	done     chan struct{}
	ended    atomic.Bool
	sent     atomic.Uint64
	received atomic.Uint64
	flushes  atomic.Uint64
}

func newSession(c *Client, stream api.Stream, log *zap.Logger) *session {
	id := uuid.NewString()
	s := &session{
		c:       c,
		id:      id,
		log:     log.With(zap.String("conn", id)),
		stream:  stream,
		queue:   concurrency.NewQueue[buffer.Snapshot](),
		gate:    concurrency.NewGate(),
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
	s.out, s.outC = buffer.New(c.cfg.OutboundCapacity, c.cfg.MaxCapacity)
	s.in, s.inC = buffer.New(c.cfg.InboundCapacity, c.cfg.MaxCapacity)
	return s
}

// start launches the background tasks. They stay parked until ready is
// called, so the connect notification always precedes any disconnect.
func (s *session) start() {
	s.group.Go(s.drain)
	s.group.Go(s.fill)
}

func (s *session) ready() { close(s.started) }

// await blocks until ready or termination and reports whether to run.
func (s *session) await() bool {
	select {
	case <-s.started:
		return !s.ended.Load()
	case <-s.done:
		return false
	}
}

// flush queues a snapshot of everything written since the previous one and
// signals the drain.
func (s *session) flush() bool {
	snap := s.out.Capture()
	if snap.Mark() == s.flushed {
		return false
	}
	s.out.ResetFence()
	if err := s.queue.Enqueue(snap); err != nil {
		return false
	}
	s.flushed = snap.Mark()
	s.flushes.Add(1)
	s.c.metrics.Flushed()
	s.gate.Open()
	s.log.Debug("flush", zap.Int("head", snap.Head), zap.Int("fence", snap.Fence), zap.Uint64("mark", snap.Mark()))
	return true
}

// terminate ends the session exactly once: it stops both tasks, releases
// the stream, moves the client to Disconnected and fires OnDisconnect. Later
// calls are no-ops returning nil.
func (s *session) terminate(code api.DisconnectCode, cause error) error {
	if !s.ended.CompareAndSwap(false, true) {
		return nil
	}
	close(s.done)
	closeErr := s.stream.Close()
	dropped := s.queue.Close()

	c := s.c
	c.metrics.Grew("outbound", s.out.Stats().Grows)
	c.metrics.Grew("inbound", s.in.Stats().Grows)
	c.setState(api.Disconnected)

	fields := []zap.Field{
		zap.Stringer("code", code),
		zap.Uint64("sent", s.sent.Load()),
		zap.Uint64("received", s.received.Load()),
	}
	if dropped > 0 {
		fields = append(fields, zap.Int("unsent_snapshots", dropped))
	}
	if err := multierr.Combine(cause, closeErr); err != nil {
		fields = append(fields, zap.Error(err))
	}
	if code == api.CodeTransferFailed {
		s.log.Warn("disconnected", fields...)
	} else {
		s.log.Info("disconnected", fields...)
	}

	c.notifyDisconnect(code)
	return closeErr
}
