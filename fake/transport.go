// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable streams and dialers.

package fake

import (
	"context"
	"io"
	"sync"

	"github.com/momentics/hioload-netclient/api"
)

var (
	_ api.Stream          = (*Stream)(nil)
	_ api.LivenessChecker = (*Stream)(nil)
)

type chunk struct {
	data []byte
	err  error
}

// Stream is a scripted api.Stream. Reads block until data, an error or a
// zero-byte read is pushed, or until Close.
type Stream struct {
	recv   chan chunk
	closed chan struct{}
	rest   []byte

	mu         sync.Mutex
	sent       []byte
	writes     int
	maxWrite   int
	hold       chan struct{}
	writeErr   error
	closeErr   error
	closeCalls int
	closeOnce  sync.Once
	peerGone   bool
}

// NewStream creates an open stream.
func NewStream() *Stream {
	return &Stream{
		recv:   make(chan chunk, 256),
		closed: make(chan struct{}),
	}
}

// Read implements api.Stream.
func (s *Stream) Read(p []byte) (int, error) {
	if len(s.rest) > 0 {
		n := copy(p, s.rest)
		s.rest = s.rest[n:]
		return n, nil
	}
	select {
	case <-s.closed:
		return 0, &api.IOError{Op: "read", Fault: api.FaultClosed}
	default:
	}
	select {
	case c := <-s.recv:
		if c.err != nil {
			return 0, c.err
		}
		n := copy(p, c.data)
		s.rest = c.data[n:]
		return n, nil
	case <-s.closed:
		return 0, &api.IOError{Op: "read", Fault: api.FaultClosed}
	}
}

// Write implements api.Stream. Writes block while Hold is in effect.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	hold := s.hold
	s.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-s.closed:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.closed:
		return 0, &api.IOError{Op: "write", Fault: api.FaultClosed}
	default:
	}
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	n := len(p)
	if s.maxWrite > 0 && n > s.maxWrite {
		n = s.maxWrite
	}
	s.sent = append(s.sent, p[:n]...)
	s.writes++
	return n, nil
}

// Close implements api.Stream. It returns the configured close error on
// every call.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	return s.closeErr
}

// Alive implements api.LivenessChecker. It reports false after Close or
// SetPeerGone.
func (s *Stream) Alive() (bool, error) {
	if s.Closed() {
		return false, &api.IOError{Op: "alive", Fault: api.FaultClosed}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.peerGone, nil
}

// SetPeerGone makes Alive report a vanished peer while reads keep blocking.
func (s *Stream) SetPeerGone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peerGone = true
}

// AddRecvData queues bytes for Read.
func (s *Stream) AddRecvData(data []byte) {
	s.recv <- chunk{data: append([]byte(nil), data...)}
}

// AddZeroRead queues a read that returns 0 bytes and no error.
func (s *Stream) AddZeroRead() {
	s.recv <- chunk{data: []byte{}}
}

// AddEOF queues a read that fails with a tagged io.EOF.
func (s *Stream) AddEOF() {
	s.recv <- chunk{err: &api.IOError{Op: "read", Fault: api.FaultEOF, Err: io.EOF}}
}

// AddRecvError queues a read that fails with err.
func (s *Stream) AddRecvError(err error) {
	s.recv <- chunk{err: err}
}

// SetWriteError makes every later Write fail with err.
func (s *Stream) SetWriteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// SetCloseError makes Close return err.
func (s *Stream) SetCloseError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeErr = err
}

// SetMaxWrite caps the bytes accepted per Write call, producing short writes
// without an error. 0 removes the cap.
func (s *Stream) SetMaxWrite(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxWrite = n
}

// Hold blocks Writes until Release is called.
func (s *Stream) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold == nil {
		s.hold = make(chan struct{})
	}
}

// Release unblocks Writes held by Hold.
func (s *Stream) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold != nil {
		close(s.hold)
		s.hold = nil
	}
}

// Sent returns every byte accepted by Write.
func (s *Stream) Sent() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.sent...)
}

// Writes returns the number of successful Write calls.
func (s *Stream) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// CloseCalls returns how many times Close was called.
func (s *Stream) CloseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Dialer is a scripted api.Dialer handing out queued streams.
type Dialer struct {
	mu      sync.Mutex
	streams []*Stream
	err     error
	hold    chan struct{}
	dials   []string
}

var _ api.Dialer = (*Dialer)(nil)

// NewDialer creates a dialer that returns the given streams in order and a
// fresh Stream once they run out.
func NewDialer(streams ...*Stream) *Dialer {
	return &Dialer{streams: streams}
}

// Dial implements api.Dialer.
func (d *Dialer) Dial(ctx context.Context, host string, port int) (api.Stream, error) {
	d.mu.Lock()
	d.dials = append(d.dials, host)
	hold, err := d.hold, d.err
	d.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, &api.IOError{Op: "dial", Fault: api.FaultCanceled, Err: ctx.Err()}
		}
	}
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.streams) == 0 {
		return NewStream(), nil
	}
	s := d.streams[0]
	d.streams = d.streams[1:]
	return s, nil
}

// SetError makes Dial fail with err.
func (d *Dialer) SetError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// Hold blocks Dial until Release or ctx cancellation.
func (d *Dialer) Hold() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hold == nil {
		d.hold = make(chan struct{})
	}
}

// Release unblocks held Dial calls.
func (d *Dialer) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hold != nil {
		close(d.hold)
		d.hold = nil
	}
}

// Dials returns the hosts passed to Dial, in order.
func (d *Dialer) Dials() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dials...)
}
