package buffer_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/core/buffer"
)

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	return b
}

// drain reads every pending byte through the Readable/Consume pair.
func drain(t *testing.T, c buffer.Consumer) []byte {
	t.Helper()
	var out []byte
	for {
		view := c.Readable()
		if len(view) == 0 {
			return out
		}
		out = append(out, view...)
		require.NoError(t, c.Consume(len(view)))
	}
}

func TestNewRoundsCapacity(t *testing.T) {
	p, _ := buffer.New(10, 0)
	assert.Equal(t, buffer.MinCapacity, p.Cap())
	assert.Equal(t, buffer.DefaultMaxCapacity, p.MaxCap())

	p, _ = buffer.New(5000, 0)
	assert.Equal(t, 8192, p.Cap())
	assert.Equal(t, 8191, p.Free())
	assert.True(t, p.Empty())

	p, _ = buffer.New(4096, 1000)
	assert.Equal(t, 4096, p.MaxCap(), "max is raised to the initial capacity")
}

func TestWriteRangeValidation(t *testing.T) {
	p, _ := buffer.New(1024, 0)
	src := make([]byte, 10)

	assert.ErrorIs(t, p.WriteRange(src, 5, 6), api.ErrInvalidArgument)
	assert.ErrorIs(t, p.WriteRange(src, -1, 2), api.ErrInvalidArgument)
	assert.ErrorIs(t, p.WriteRange(src, 0, -2), api.ErrInvalidArgument)
	assert.NoError(t, p.WriteRange(src, 10, 0))
	assert.True(t, p.Empty(), "zero-length write is a no-op")

	require.NoError(t, p.WriteRange(src, 2, 8))
	assert.Equal(t, 8, p.Used())
}

func TestWriteSplitsAcrossPhysicalEnd(t *testing.T) {
	p, c := buffer.New(1024, 1024)
	_, err := p.Write(make([]byte, 1000))
	require.NoError(t, err)
	require.NoError(t, c.Consume(1000))

	data := pattern(300, 1)
	_, err = p.Write(data)
	require.NoError(t, err)
	assert.Equal(t, 1024, p.Cap(), "no growth needed")

	first := c.Readable()
	assert.Len(t, first, 24, "readable span stops at the physical end")
	got := append([]byte(nil), first...)
	require.NoError(t, c.Consume(len(first)))
	got = append(got, c.Readable()...)
	assert.Equal(t, data, got)
}

func TestWriteFullRingGrows(t *testing.T) {
	p, c := buffer.New(1024, 0)
	data := pattern(1023, 3)
	_, err := p.Write(data)
	require.NoError(t, err)
	assert.Equal(t, 1024, p.Cap(), "usable capacity is capacity-1")
	assert.Zero(t, p.Free())

	_, err = p.Write([]byte{0xAA})
	require.NoError(t, err)
	assert.Equal(t, 2048, p.Cap())
	assert.Equal(t, append(data, 0xAA), drain(t, c))
}

func TestUsedAtCapturedHead(t *testing.T) {
	p, _ := buffer.New(1024, 0)
	_, _ = p.Write(make([]byte, 100))
	s := p.Capture()
	_, _ = p.Write(make([]byte, 50))
	assert.Equal(t, 100, p.UsedAt(s.Head))
	assert.Equal(t, 150, p.Used())
}

func TestConsumeValidation(t *testing.T) {
	p, c := buffer.New(1024, 0)
	_, _ = p.Write(make([]byte, 10))
	assert.ErrorIs(t, c.Consume(11), api.ErrInvalidArgument)
	assert.ErrorIs(t, c.Consume(-1), api.ErrInvalidArgument)
	assert.NoError(t, c.Consume(10))
	assert.True(t, c.Empty())
}

// Random writes, spans and partial reads against a reference queue. Head is
// forced past the physical end many times and the ring grows from 1024
// through several doublings.
func TestRandomizedRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p, c := buffer.New(1024, 1<<16)
	var want bytes.Buffer
	var seed byte

	for i := 0; i < 5000; i++ {
		switch op := rng.Intn(10); {
		case op < 4:
			n := rng.Intn(700)
			if rng.Intn(50) == 0 {
				n = 1500 + rng.Intn(3000)
			}
			if want.Len()+n > 30000 {
				continue
			}
			seed++
			data := pattern(n, seed)
			_, err := p.Write(data)
			require.NoError(t, err)
			want.Write(data)
		case op < 6:
			n := 1 + rng.Intn(600)
			if want.Len()+n > 30000 {
				continue
			}
			span, err := p.RequestSpan(n)
			require.NoError(t, err)
			require.Len(t, span, n)
			seed++
			copy(span, pattern(n, seed))
			commit := rng.Intn(n + 1)
			require.NoError(t, p.CommitSpan(commit))
			want.Write(span[:commit])
		default:
			view := c.Readable()
			if len(view) == 0 {
				require.Zero(t, want.Len(), "iteration %d", i)
				continue
			}
			k := 1 + rng.Intn(len(view))
			require.Equal(t, want.Next(k), view[:k], "iteration %d", i)
			require.NoError(t, c.Consume(k))
		}
	}
	assert.Equal(t, want.Bytes(), drain(t, c))
	st := p.Stats()
	assert.GreaterOrEqual(t, st.Grows, uint64(1))
	assert.GreaterOrEqual(t, st.Capacity, 2048)
	assert.Equal(t, st.Written, st.Read)
}
