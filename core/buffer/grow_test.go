package buffer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/core/buffer"
)

func TestGrowthPreservesOrder(t *testing.T) {
	p, c := buffer.New(1024, 0)
	var want bytes.Buffer

	// Move tail off zero so the pending data wraps before the first growth.
	_, _ = p.Write(make([]byte, 700))
	require.NoError(t, c.Consume(700))

	caps := []int{p.Cap()}
	for i, n := range []int{900, 1500, 3000, 6000} {
		data := pattern(n, byte(i+1))
		_, err := p.Write(data)
		require.NoError(t, err)
		want.Write(data)
		caps = append(caps, p.Cap())
	}

	assert.Equal(t, []int{1024, 1024, 4096, 8192, 16384}, caps)
	assert.GreaterOrEqual(t, p.Stats().Grows, uint64(3))
	assert.Equal(t, want.Bytes(), drain(t, c))
}

func TestGrowthDropsFencedDeadRegion(t *testing.T) {
	p, c := buffer.New(1024, 0)
	head := pattern(900, 10)
	_, _ = p.Write(head)
	require.NoError(t, c.Consume(800))

	span, off, err := p.RequestSpanAt(200)
	require.NoError(t, err)
	assert.Zero(t, off)
	assert.Equal(t, 900, p.Fence())
	wrapped := pattern(200, 20)
	copy(span, wrapped)
	require.NoError(t, p.CommitSpan(200))

	// 100 pending before the fence, 200 after it, 124 dead bytes.
	assert.Equal(t, 424, p.Used())

	big := pattern(2000, 30)
	_, err = p.Write(big)
	require.NoError(t, err)
	assert.Equal(t, 4096, p.Cap())
	assert.Zero(t, p.Fence(), "growth relays data and clears the fence")

	want := append(append(append([]byte(nil), head[800:]...), wrapped...), big...)
	assert.Equal(t, want, drain(t, c))
}

func TestGrowthBoundedByMax(t *testing.T) {
	p, c := buffer.New(1024, 2048)
	_, err := p.Write(make([]byte, 1500))
	require.NoError(t, err)
	assert.Equal(t, 2048, p.Cap())

	_, err = p.Write(make([]byte, 600))
	assert.ErrorIs(t, err, api.ErrCapacityExceeded)
	assert.Equal(t, 1500, c.Used(), "a rejected write leaves the ring untouched")
}

func TestCompactsAtMaxCapacity(t *testing.T) {
	p, c := buffer.New(1024, 1024)
	head := pattern(900, 40)
	_, _ = p.Write(head)
	require.NoError(t, c.Consume(800))

	span, err := p.RequestSpan(500)
	require.NoError(t, err)
	assert.Equal(t, 900, p.Fence())
	wrapped := pattern(500, 50)
	copy(span, wrapped)
	require.NoError(t, p.CommitSpan(500))

	// 600 pending data bytes and a 124-byte dead region leave 423 usable.
	tail := pattern(350, 60)
	_, err = p.Write(tail)
	require.NoError(t, err, "the dead region is reclaimed without growing")
	assert.Equal(t, 1024, p.Cap())
	assert.Zero(t, p.Stats().Grows)
	assert.Zero(t, p.Fence())

	_, err = p.Write(make([]byte, 74))
	assert.ErrorIs(t, err, api.ErrCapacityExceeded)

	want := append(append(append([]byte(nil), head[800:]...), wrapped...), tail...)
	assert.Equal(t, want, drain(t, c))
}

func TestSpanCompactsAtMaxCapacity(t *testing.T) {
	p, c := buffer.New(1024, 1024)
	_, _ = p.Write(make([]byte, 600))
	require.NoError(t, c.Consume(500))

	// 100 pending at [500,600): neither the run to the end nor [0,tail) holds 600.
	span, off, err := p.RequestSpanAt(600)
	require.NoError(t, err)
	assert.Equal(t, 100, off, "compaction moves the pending bytes to offset 0")
	assert.Len(t, span, 600)
	assert.Equal(t, 1024, p.Cap())
}
