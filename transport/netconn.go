// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package transport adapts net.Conn to api.Stream and tags socket failures
// with an api.Fault.
package transport

import (
	"errors"
	"net"
	"sync"

	"github.com/momentics/hioload-netclient/api"
)

var (
	_ api.Stream          = (*NetConn)(nil)
	_ api.LivenessChecker = (*NetConn)(nil)
)

// NetConn implements api.Stream over a connected net.Conn.
type NetConn struct {
	conn net.Conn

	closeOnce sync.Once
	closeErr  error
}

// NewNetConn wraps conn.
func NewNetConn(conn net.Conn) *NetConn {
	return &NetConn{conn: conn}
}

// Read fills buf with at most len(buf) bytes.
func (n *NetConn) Read(buf []byte) (int, error) {
	r, err := n.conn.Read(buf)
	if err != nil {
		return r, Classify("read", err)
	}
	return r, nil
}

// Write sends buf; a short write always carries an error.
func (n *NetConn) Write(buf []byte) (int, error) {
	w, err := n.conn.Write(buf)
	if err != nil {
		return w, Classify("write", err)
	}
	return w, nil
}

// Close the connection. Later calls return the first result.
func (n *NetConn) Close() error {
	n.closeOnce.Do(func() {
		if err := n.conn.Close(); err != nil {
			n.closeErr = Classify("close", err)
		}
	})
	return n.closeErr
}

// Alive checks without blocking whether the peer is still connected. A
// closed or reset connection reports false with the classified error.
func (n *NetConn) Alive() (bool, error) {
	ok, err := peerAlive(n.conn)
	switch {
	case errors.Is(err, api.ErrNotSupported):
		return false, err
	case err != nil:
		return false, Classify("alive", err)
	}
	return ok, nil
}

// LocalAddr returns the local endpoint.
func (n *NetConn) LocalAddr() net.Addr { return n.conn.LocalAddr() }

// RemoteAddr returns the peer endpoint.
func (n *NetConn) RemoteAddr() net.Addr { return n.conn.RemoteAddr() }

// Conn exposes the wrapped connection.
func (n *NetConn) Conn() net.Conn { return n.conn }
