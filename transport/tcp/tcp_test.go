package tcp_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/transport/tcp"
)

func startEcho(t *testing.T, cfg tcp.EchoConfig) *tcp.EchoServer {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = zaptest.NewLogger(t)
	}
	srv, err := tcp.ListenEcho("127.0.0.1:0", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestDialerEchoRoundTrip(t *testing.T) {
	srv := startEcho(t, tcp.EchoConfig{})
	opts := tcp.DefaultOptions()
	opts.SendBuf = 64 * 1024
	opts.RecvBuf = 64 * 1024
	d := tcp.NewDialer(opts, zaptest.NewLogger(t))

	s, err := d.Dial(context.Background(), srv.Host(), srv.Port())
	require.NoError(t, err)
	defer s.Close()

	msg := []byte("ping over loopback")
	n, err := s.Write(msg)
	require.NoError(t, err)
	require.Equal(t, len(msg), n)

	got := make([]byte, len(msg))
	_, err = io.ReadFull(s, got)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
	assert.Eventually(t, func() bool { return string(srv.Received()) == string(msg) },
		time.Second, 5*time.Millisecond)
}

func TestDialerRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	d := tcp.NewDialer(tcp.DefaultOptions(), nil)
	_, err = d.Dial(context.Background(), "127.0.0.1", port)
	require.Error(t, err)
	assert.Equal(t, api.FaultRefused, api.FaultOf(err))
}

func TestDialerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := tcp.NewDialer(tcp.DefaultOptions(), nil)
	_, err := d.Dial(ctx, "127.0.0.1", 9)
	require.Error(t, err)
	assert.Equal(t, api.FaultCanceled, api.FaultOf(err))
}

func TestEchoMuteAndLimit(t *testing.T) {
	srv := startEcho(t, tcp.EchoConfig{Mute: true, MaxConnections: 1})
	d := tcp.NewDialer(tcp.DefaultOptions(), nil)

	s1, err := d.Dial(context.Background(), srv.Host(), srv.Port())
	require.NoError(t, err)
	defer s1.Close()
	_, err = s1.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return srv.Connections() == 1 && len(srv.Received()) == 3 },
		time.Second, 5*time.Millisecond)

	// over the limit: accepted by the kernel, then closed by the server
	s2, err := d.Dial(context.Background(), srv.Host(), srv.Port())
	require.NoError(t, err)
	defer s2.Close()
	_, err = s2.Read(make([]byte, 1))
	assert.Error(t, err)
	assert.Equal(t, 1, srv.Connections())
}

func TestEchoCloseDropsConnections(t *testing.T) {
	srv, err := tcp.ListenEcho("127.0.0.1:0", tcp.EchoConfig{})
	require.NoError(t, err)
	d := tcp.NewDialer(tcp.DefaultOptions(), nil)
	s, err := d.Dial(context.Background(), srv.Host(), srv.Port())
	require.NoError(t, err)
	defer s.Close()
	assert.Eventually(t, func() bool { return srv.Connections() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, srv.Close())
	_, err = s.Read(make([]byte, 1))
	assert.Error(t, err)
}
