// File: client/client.go
// Package client provides an asynchronous TCP client transport with
// snapshot-delimited background sends.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The application goroutine is the only producer of the outbound buffer and
// the only consumer of the inbound buffer. Per connection, a drain goroutine
// streams flushed bytes to the socket and a fill goroutine reads the socket
// into the inbound buffer. Connect may recur on the same Client; each
// connection gets fresh buffers and fresh background goroutines.

package client

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/control"
	"github.com/momentics/hioload-netclient/transport/tcp"
)

var (
	_ api.SpanWriter = (*Client)(nil)
	_ api.SpanReader = (*Client)(nil)
)

// Client is a single-connection TCP client.
type Client struct {
	cfg       *control.Config
	dialer    api.Dialer
	handler   api.EventHandler
	log       *zap.Logger
	metrics   *control.Metrics
	onReceive func(n int)

	state atomic.Int32
	sess  atomic.Pointer[session]

	mu      sync.Mutex
	host    string
	port    int
	dialed  bool
	pending *attempt
}

// attempt tracks an in-flight dial so Close can abort it.
type attempt struct {
	cancel  context.CancelFunc
	aborted bool
	done    chan struct{}
}

// New creates a disconnected client. A nil cfg means control.DefaultConfig.
func New(cfg *control.Config, opts ...Option) *Client {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	c := &Client{
		cfg:     cfg,
		handler: api.HandlerFuncs{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = tcp.NewDialer(tcp.Options{
			Timeout:   cfg.DialTimeout,
			NoDelay:   cfg.NoDelay,
			KeepAlive: cfg.KeepAlive,
			SendBuf:   cfg.SendBuffer,
			RecvBuf:   cfg.RecvBuffer,
		}, c.log)
	}
	return c
}

// State returns the connection state.
func (c *Client) State() api.ConnState {
	return api.ConnState(c.state.Load())
}

func (c *Client) setState(s api.ConnState) {
	c.state.Store(int32(s))
	c.metrics.State(s)
}

// Addr returns host:port of the last connect attempt, or "" if none.
func (c *Client) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dialed {
		return ""
	}
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// Connect dials host:port and starts the background tasks. A malformed host
// or port fails without entering Connecting. Every failure, including a
// canceled ctx, is reported once through OnDisconnect with a negative code,
// except an attempt aborted by Close, which reports CodeClosed from Close.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	c.mu.Lock()
	if c.State() != api.Disconnected {
		c.mu.Unlock()
		return api.ErrAlreadyConnected
	}
	if code, err := validateEndpoint(host, port); err != nil {
		c.mu.Unlock()
		c.log.Info("connect rejected", zap.String("host", host), zap.Int("port", port), zap.Error(err))
		c.notifyDisconnect(code)
		return err
	}
	c.host, c.port, c.dialed = host, port, true

	dctx, cancel := context.WithCancel(ctx)
	att := &attempt{cancel: cancel, done: make(chan struct{})}
	c.pending = att
	c.setState(api.Connecting)
	c.mu.Unlock()

	log := c.log.With(zap.String("addr", net.JoinHostPort(host, strconv.Itoa(port))))
	log.Debug("connecting")
	stream, err := c.dialer.Dial(dctx, host, port)

	c.mu.Lock()
	c.pending = nil
	cancel()
	if err != nil || att.aborted {
		if stream != nil {
			_ = stream.Close()
		}
		c.setState(api.Disconnected)
		aborted := att.aborted
		close(att.done)
		c.mu.Unlock()

		if aborted {
			log.Info("connect aborted by close")
			return api.ErrConnectAborted
		}
		code := connectFailureCode(ctx, err)
		log.Info("connect failed", zap.Stringer("code", code), zap.Error(err))
		c.notifyDisconnect(code)
		return api.NewError(api.ErrCodeConnect, "connect "+net.JoinHostPort(host, strconv.Itoa(port)), err).
			WithContext("code", int(code))
	}

	s := newSession(c, stream, log)
	c.sess.Store(s)
	c.setState(api.Connected)
	close(att.done)
	c.mu.Unlock()

	s.start()
	s.log.Info("connected")
	c.handler.OnConnect()
	s.ready()
	return nil
}

// Reconnect connects again to the last host and port.
func (c *Client) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	host, port, dialed := c.host, c.port, c.dialed
	c.mu.Unlock()
	if !dialed {
		return api.ErrNeverConnected
	}
	return c.Connect(ctx, host, port)
}

// Close tears down the connection. OnDisconnect fires with CodeClosed exactly
// once per connection however often Close is called; an idle client is left
// untouched. The returned error is the stream's close error, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	if att := c.pending; att != nil && !att.aborted {
		att.aborted = true
		att.cancel()
		c.mu.Unlock()
		<-att.done
		c.log.Info("disconnected", zap.Stringer("code", api.CodeClosed))
		c.notifyDisconnect(api.CodeClosed)
		return nil
	}
	c.mu.Unlock()

	s := c.sess.Load()
	if s == nil {
		return nil
	}
	return s.terminate(api.CodeClosed, nil)
}

// Alive reports whether the client is connected and, when the stream can
// check without blocking, whether the peer is still there. It does not read
// and does not end the session; the fill task does that on its own.
func (c *Client) Alive() bool {
	s, err := c.live()
	if err != nil || c.State() != api.Connected {
		return false
	}
	lc, ok := s.stream.(api.LivenessChecker)
	if !ok {
		return true
	}
	alive, err := lc.Alive()
	switch {
	case errors.Is(err, api.ErrNotSupported):
		return true
	case err != nil:
		s.log.Debug("liveness check failed", zap.Error(err))
	}
	return alive
}

// Wait blocks until the background tasks of the current connection exit and
// returns the transfer failure that ended it, if any.
func (c *Client) Wait() error {
	s := c.sess.Load()
	if s == nil {
		return nil
	}
	return s.group.Wait()
}

// Send queues p for the next Flush.
func (c *Client) Send(p []byte) error {
	return c.SendRange(p, 0, len(p))
}

// SendRange queues p[off:off+n] for the next Flush. It never flushes.
func (c *Client) SendRange(p []byte, off, n int) error {
	s, err := c.live()
	if err != nil {
		return err
	}
	return s.out.WriteRange(p, off, n)
}

// RequestSpan grants n contiguous outbound bytes to be filled in place and
// published with CommitSpan.
func (c *Client) RequestSpan(n int) ([]byte, error) {
	s, err := c.live()
	if err != nil {
		return nil, err
	}
	return s.out.RequestSpan(n)
}

// CommitSpan publishes the first n bytes of the last granted span.
func (c *Client) CommitSpan(n int) error {
	s, err := c.live()
	if err != nil {
		return err
	}
	return s.out.CommitSpan(n)
}

// Flush hands every byte queued so far to the drain. It reports whether a
// new snapshot was queued; sends between two flushes go out as one burst.
func (c *Client) Flush() bool {
	s, err := c.live()
	if err != nil {
		return false
	}
	return s.flush()
}

// BeginRead returns the contiguous run of received, unread bytes. It stays
// usable after a disconnect until the next Connect.
func (c *Client) BeginRead() []byte {
	s := c.sess.Load()
	if s == nil {
		return nil
	}
	return s.inC.Readable()
}

// EndRead releases n bytes returned by BeginRead.
func (c *Client) EndRead(n int) error {
	s := c.sess.Load()
	if s == nil {
		if n == 0 {
			return nil
		}
		return api.ErrNotConnected
	}
	return s.inC.Consume(n)
}

// Stats returns a point-in-time traffic report.
func (c *Client) Stats() api.TransportStats {
	st := api.TransportStats{State: c.State()}
	s := c.sess.Load()
	if s == nil {
		return st
	}
	out, in := s.out.Stats(), s.inC.Stats()
	st.BytesSent = s.sent.Load()
	st.BytesReceived = s.received.Load()
	st.Flushes = s.flushes.Load()
	st.QueuedFlushes = s.queue.Len()
	st.OutboundCap, st.OutboundPending = out.Capacity, out.Used
	st.InboundCap, st.InboundPending = in.Capacity, in.Used
	return st
}

// RegisterProbes publishes client state on a debug registry.
func (c *Client) RegisterProbes(d api.Debug) {
	d.RegisterProbe("client.state", func() any { return c.State().String() })
	d.RegisterProbe("client.addr", func() any { return c.Addr() })
	d.RegisterProbe("client.stats", func() any { return c.Stats() })
	d.RegisterProbe("client.alive", func() any { return c.Alive() })
}

func (c *Client) live() (*session, error) {
	s := c.sess.Load()
	if s == nil || s.ended.Load() {
		return nil, api.ErrNotConnected
	}
	return s, nil
}

func (c *Client) notifyDisconnect(code api.DisconnectCode) {
	c.metrics.Disconnected(code)
	c.handler.OnDisconnect(code)
}
