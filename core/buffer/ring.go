// File: core/buffer/ring.go
// Package buffer implements the growable circular byte buffer that sits
// between the application and a socket.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The ring has exactly one producer and one consumer. New returns two handles
// over the same storage: only Producer methods move head and fence, only
// Consumer methods move tail. A short mutex guards index bookkeeping so that
// growth, which relocates storage and rewrites tail, cannot interleave with a
// consumer commit. No method performs I/O or waits while holding it.

package buffer

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-netclient/api"
)

const (
	// MinCapacity is the smallest physical capacity of a ring.
	MinCapacity = 1024
	// DefaultOutboundCapacity is the initial capacity of a send ring.
	DefaultOutboundCapacity = 4 * 1024
	// DefaultInboundCapacity is the initial capacity of a receive ring.
	DefaultInboundCapacity = 8 * 1024
	// DefaultMaxCapacity bounds growth unless configured otherwise.
	DefaultMaxCapacity = 1 << 30
)

// ring is the shared state behind Producer and Consumer.
//
// Invariants:
//   - len(buf) is a power of two and mask == len(buf)-1
//   - one slot stays unused, head == tail means empty
//   - fence == 0 means unset, otherwise tail <= fence <= len(buf)
//   - while head < tail the data is [tail, edge) followed by [0, head) and
//     [edge, len(buf)) is a dead region left behind by a fenced wrap
type ring struct {
	mu sync.Mutex

	buf  []byte
	mask int
	max  int

	head  int
	tail  int
	fence int
	edge  int
	span  int

	written uint64 // data bytes committed by the producer
	read    uint64 // data bytes released by the consumer
	gen     uint64 // bumped on every relocation
	grows   uint64
}

// Producer is the write side of a ring. It is not safe for use by more than
// one goroutine at a time.
type Producer struct{ View }

// Consumer is the read side of a ring. It is not safe for use by more than
// one goroutine at a time.
type Consumer struct{ View }

// View exposes read-only accounting shared by both handles.
type View struct{ r *ring }

// Stats is a point-in-time accounting snapshot of a ring.
type Stats struct {
	Capacity int
	Used     int
	Free     int
	Written  uint64
	Read     uint64
	Grows    uint64
}

// New allocates a ring of at least capacity bytes that may grow up to
// maxCapacity. Both values are rounded up to a power of two; capacity is
// raised to MinCapacity and maxCapacity to the initial capacity.
func New(capacity, maxCapacity int) (Producer, Consumer) {
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxCapacity
	}
	maxCapacity = nextPowerOfTwo(maxCapacity)
	size := RoundCapacity(capacity)
	if size > maxCapacity {
		maxCapacity = size
	}
	r := &ring{
		buf:  make([]byte, size),
		mask: size - 1,
		max:  maxCapacity,
		edge: size,
		span: -1,
	}
	return Producer{View{r}}, Consumer{View{r}}
}

// RoundCapacity clamps n to MinCapacity and rounds it up to a power of two.
func RoundCapacity(n int) int {
	if n < MinCapacity {
		n = MinCapacity
	}
	return nextPowerOfTwo(n)
}

// Cap returns the physical capacity.
func (v View) Cap() int {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	return len(v.r.buf)
}

// MaxCap returns the growth bound.
func (v View) MaxCap() int { return v.r.max }

// Used returns bytes between tail and the live head, including any dead
// region skipped by a fence.
func (v View) Used() int {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	return v.r.usedAt(v.r.head)
}

// UsedAt returns bytes between tail and a previously captured head. The live
// head may have moved on since the capture.
func (v View) UsedAt(head int) int {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	return v.r.usedAt(head)
}

// Free returns bytes writable without growing.
func (v View) Free() int {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	return v.r.free()
}

// Empty reports whether head == tail.
func (v View) Empty() bool {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	return v.r.head == v.r.tail
}

// Stats returns a point-in-time accounting snapshot.
func (v View) Stats() Stats {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	return Stats{
		Capacity: len(v.r.buf),
		Used:     v.r.usedAt(v.r.head),
		Free:     v.r.free(),
		Written:  v.r.written,
		Read:     v.r.read,
		Grows:    v.r.grows,
	}
}

// Write appends p. It implements io.Writer.
func (p Producer) Write(b []byte) (int, error) {
	if err := p.WriteRange(b, 0, len(b)); err != nil {
		return 0, err
	}
	return len(b), nil
}

// WriteRange appends b[off:off+n], growing the ring first if it lacks room.
func (p Producer) WriteRange(b []byte, off, n int) error {
	if off < 0 || n < 0 || off+n > len(b) {
		return fmt.Errorf("write range [%d:+%d] of %d bytes: %w", off, n, len(b), api.ErrInvalidArgument)
	}
	if n == 0 {
		return nil
	}
	r := p.r
	r.mu.Lock()
	defer r.mu.Unlock()

	for r.free() < n {
		if !r.growFor(n) {
			return fmt.Errorf("write %d bytes: %w", n, api.ErrCapacityExceeded)
		}
	}
	src := b[off : off+n]
	c := copy(r.buf[r.head:], src)
	if c < n {
		copy(r.buf, src[c:])
	}
	r.span = -1
	r.advanceHead(n)
	return nil
}

// Readable returns the physically contiguous unread bytes starting at tail.
// When the data wraps, only the run up to the wrap edge is returned; call
// again after Consume to get the remainder.
func (c Consumer) Readable() []byte {
	r := c.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.head >= r.tail {
		return r.buf[r.tail:r.head]
	}
	if r.tail == r.edge {
		// nothing left before a fence placed on an empty ring
		return r.buf[:r.head]
	}
	return r.buf[r.tail:r.edge]
}

// Consume releases n bytes from tail.
func (c Consumer) Consume(n int) error {
	r := c.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 0 || n > r.dataLen() {
		return fmt.Errorf("consume %d of %d bytes: %w", n, r.dataLen(), api.ErrInvalidArgument)
	}
	r.advanceTail(n)
	r.read += uint64(n)
	return nil
}

func (r *ring) usedAt(head int) int {
	if head >= r.tail {
		return head - r.tail
	}
	return len(r.buf) - (r.tail - head)
}

func (r *ring) free() int {
	return len(r.buf) - 1 - r.usedAt(r.head)
}

// dataLen counts pending bytes, excluding the dead region of a fenced wrap.
func (r *ring) dataLen() int {
	if r.head >= r.tail {
		return r.head - r.tail
	}
	return r.edge - r.tail + r.head
}

// advanceHead moves head by n committed bytes and records the wrap edge.
func (r *ring) advanceHead(n int) {
	next := (r.head + n) & r.mask
	if next < r.head {
		r.edge = len(r.buf)
	}
	r.head = next
	r.written += uint64(n)
}

// advanceTail moves tail by n data bytes, jumping the dead region at the
// wrap edge. Without a fence this is (tail+n)&mask.
func (r *ring) advanceTail(n int) {
	if r.head >= r.tail {
		r.tail += n
		return
	}
	if run := r.edge - r.tail; n < run {
		r.tail += n
	} else {
		r.tail = n - run
	}
}
