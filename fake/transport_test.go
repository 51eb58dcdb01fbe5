package fake_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/fake"
)

func TestStreamScriptedReads(t *testing.T) {
	s := fake.NewStream()
	s.AddRecvData([]byte("abcdef"))
	s.AddZeroRead()
	s.AddEOF()

	buf := make([]byte, 4)
	n, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(buf[:n]))
	n, err = s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(buf[:n]))

	n, err = s.Read(buf)
	assert.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.Read(buf)
	assert.Equal(t, api.FaultEOF, api.FaultOf(err))
}

func TestStreamCloseUnblocksRead(t *testing.T) {
	s := fake.NewStream()
	done := make(chan error, 1)
	go func() {
		_, err := s.Read(make([]byte, 1))
		done <- err
	}()
	require.NoError(t, s.Close())
	select {
	case err := <-done:
		assert.Equal(t, api.FaultClosed, api.FaultOf(err))
	case <-time.After(time.Second):
		t.Fatal("read not unblocked")
	}
	_, err := s.Write([]byte{1})
	assert.Equal(t, api.FaultClosed, api.FaultOf(err))
	assert.True(t, s.Closed())
}

func TestStreamWrites(t *testing.T) {
	s := fake.NewStream()
	s.SetMaxWrite(2)
	n, err := s.Write([]byte("xyz"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte("xy"), s.Sent())

	boom := errors.New("boom")
	s.SetWriteError(boom)
	_, err = s.Write([]byte("z"))
	assert.ErrorIs(t, err, boom)

	s.SetCloseError(boom)
	assert.ErrorIs(t, s.Close(), boom)
	assert.Equal(t, 1, s.CloseCalls())
}

func TestStreamHold(t *testing.T) {
	s := fake.NewStream()
	s.Hold()
	done := make(chan struct{})
	go func() {
		_, _ = s.Write([]byte("late"))
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("write passed a hold")
	case <-time.After(20 * time.Millisecond):
	}
	s.Release()
	<-done
	assert.Equal(t, []byte("late"), s.Sent())
}

func TestDialer(t *testing.T) {
	first := fake.NewStream()
	d := fake.NewDialer(first)
	got, err := d.Dial(context.Background(), "a", 1)
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = d.Dial(context.Background(), "b", 2)
	require.NoError(t, err)
	assert.NotSame(t, first, got)
	assert.Equal(t, []string{"a", "b"}, d.Dials())

	d.Hold()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Dial(ctx, "c", 3)
	assert.Equal(t, api.FaultCanceled, api.FaultOf(err))

	d.Release()
	d.SetError(&api.IOError{Op: "dial", Fault: api.FaultRefused})
	_, err = d.Dial(context.Background(), "d", 4)
	assert.Equal(t, api.FaultRefused, api.FaultOf(err))
}

func TestStreamAlive(t *testing.T) {
	s := fake.NewStream()
	ok, err := s.Alive()
	require.NoError(t, err)
	assert.True(t, ok)

	s.SetPeerGone()
	ok, err = s.Alive()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Close())
	_, err = s.Alive()
	assert.Equal(t, api.FaultClosed, api.FaultOf(err))
}
