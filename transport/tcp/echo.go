// File: transport/tcp/echo.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EchoServer is a loopback TCP peer that writes every received byte back to
// its sender. It backs integration tests and the CLI's echo command.

package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EchoConfig tunes an EchoServer.
type EchoConfig struct {
	MaxConnections int         // 0 = unlimited
	Mute           bool        // record but do not echo
	ReadSize       int         // per-read buffer, default 4096
	Logger         *zap.Logger // nil disables logging
}

// EchoServer accepts connections and echoes their bytes.
type EchoServer struct {
	cfg EchoConfig
	ln  net.Listener
	log *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	received []byte
}

// ListenEcho binds addr (use "127.0.0.1:0" for an ephemeral port) and starts
// serving in the background.
func ListenEcho(addr string, cfg EchoConfig) (*EchoServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	if cfg.ReadSize <= 0 {
		cfg.ReadSize = 4096
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	s := &EchoServer{
		cfg:    cfg,
		ln:     ln,
		log:    log.With(zap.String("listener", ln.Addr().String())),
		ctx:    ctx,
		cancel: cancel,
		group:  g,
		conns:  make(map[net.Conn]struct{}),
	}
	g.Go(s.acceptLoop)
	return s, nil
}

// Addr returns the bound TCP address.
func (s *EchoServer) Addr() *net.TCPAddr { return s.ln.Addr().(*net.TCPAddr) }

// Host returns the bound IP as a string.
func (s *EchoServer) Host() string { return s.Addr().IP.String() }

// Port returns the bound port.
func (s *EchoServer) Port() int { return s.Addr().Port }

// Received returns a copy of every byte read so far, in arrival order.
func (s *EchoServer) Received() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.received...)
}

// Connections returns the number of open connections.
func (s *EchoServer) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Wait blocks until the server stops and returns the first serve error.
func (s *EchoServer) Wait() error {
	return s.group.Wait()
}

// Close stops accepting, drops all connections and waits for the handlers.
func (s *EchoServer) Close() error {
	s.cancel()
	err := s.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	s.mu.Lock()
	for c := range s.conns {
		err = multierr.Append(err, ignoreClosed(c.Close()))
	}
	s.mu.Unlock()
	return multierr.Append(err, s.group.Wait())
}

func (s *EchoServer) acceptLoop() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		if !s.track(conn) {
			s.log.Debug("connection limit reached", zap.Stringer("peer", conn.RemoteAddr()))
			_ = conn.Close()
			continue
		}
		s.group.Go(func() error {
			s.serve(conn)
			return nil
		})
	}
}

func (s *EchoServer) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	if s.cfg.MaxConnections > 0 && len(s.conns) >= s.cfg.MaxConnections {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *EchoServer) serve(conn net.Conn) {
	log := s.log.With(zap.Stringer("peer", conn.RemoteAddr()))
	log.Debug("accepted")
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
		log.Debug("closed")
	}()

	buf := make([]byte, s.cfg.ReadSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.received = append(s.received, buf[:n]...)
			s.mu.Unlock()
			if !s.cfg.Mute {
				if _, werr := conn.Write(buf[:n]); werr != nil {
					log.Debug("write", zap.Error(werr))
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
