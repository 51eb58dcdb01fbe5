// File: transport/tcp/dialer.go
// Package tcp dials TCP streams for the client and hosts a loopback echo peer.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"context"
	"net"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/transport"
)

var _ api.Dialer = (*Dialer)(nil)

// Options tune sockets created by Dialer.
type Options struct {
	Timeout   time.Duration // dial timeout, 0 = none
	NoDelay   bool          // TCP_NODELAY
	KeepAlive time.Duration // keepalive period, negative disables
	SendBuf   int           // SO_SNDBUF, 0 = OS default
	RecvBuf   int           // SO_RCVBUF, 0 = OS default
}

// DefaultOptions mirrors the client's defaults.
func DefaultOptions() Options {
	return Options{NoDelay: true, KeepAlive: 15 * time.Second}
}

// Dialer implements api.Dialer over TCP.
type Dialer struct {
	opts Options
	nd   net.Dialer
	log  *zap.Logger
}

// NewDialer creates a dialer; a nil logger disables logging.
func NewDialer(opts Options, log *zap.Logger) *Dialer {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dialer{opts: opts, log: log}
	d.nd = net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: opts.KeepAlive,
		Control:   d.control,
	}
	return d
}

// Dial connects to host:port and returns the stream with options applied.
func (d *Dialer) Dial(ctx context.Context, host string, port int) (api.Stream, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := d.nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, transport.Classify("dial", err)
	}
	// the runtime enables TCP_NODELAY on every new TCPConn, so it is set
	// here rather than in control
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.SetNoDelay(d.opts.NoDelay); err != nil {
			d.log.Debug("set nodelay", zap.String("addr", addr), zap.Error(err))
		}
	}
	return transport.NewNetConn(conn), nil
}

func (d *Dialer) control(network, address string, rc syscall.RawConn) error {
	if d.opts.SendBuf <= 0 && d.opts.RecvBuf <= 0 {
		return nil
	}
	var serr error
	if err := rc.Control(func(fd uintptr) {
		serr = setBuffers(fd, d.opts.SendBuf, d.opts.RecvBuf)
	}); err != nil {
		return err
	}
	if serr != nil {
		d.log.Warn("socket buffer options", zap.String("addr", address), zap.Error(serr))
	}
	return nil
}
