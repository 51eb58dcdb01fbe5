// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Socket abstraction consumed by the client. Implementations report failures
// as *IOError so callers can match on the Fault tag.

package api

import "context"

// Stream abstracts a connected full-duplex byte stream.
type Stream interface {
	// Read reads at most len(p) bytes. A zero-byte read without error, or a
	// FaultEOF error, means the peer closed its side.
	Read(p []byte) (n int, err error)

	// Write writes buffer contents; it may return n < len(p) with an error.
	Write(p []byte) (n int, err error)

	// Close shuts down the stream and releases the socket.
	Close() error
}

// LivenessChecker is implemented by streams that can tell, without reading
// and without blocking, whether the peer is still there.
type LivenessChecker interface {
	// Alive reports false once the peer has closed or reset the connection.
	// Unread data counts as alive. ErrNotSupported means the platform
	// offers no such check.
	Alive() (bool, error)
}

// Dialer establishes Streams.
type Dialer interface {
	// Dial connects to host:port. The attempt is aborted when ctx is done.
	Dial(ctx context.Context, host string, port int) (Stream, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, host string, port int) (Stream, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(ctx context.Context, host string, port int) (Stream, error) {
	return f(ctx, host, port)
}
