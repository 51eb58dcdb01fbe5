// File: core/buffer/span.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contiguous span allocation. A framer asks for n bytes it can fill in place;
// when the run to the physical end is too short the ring inserts a fence at
// head and restarts from offset 0.

package buffer

import (
	"fmt"

	"github.com/momentics/hioload-netclient/api"
)

var _ api.SpanWriter = Producer{}

// RequestSpan returns exactly n contiguous writable bytes starting at the
// returned offset. The span is published by CommitSpan.
func (p Producer) RequestSpan(n int) ([]byte, error) {
	span, _, err := p.RequestSpanAt(n)
	return span, err
}

// RequestSpanAt is RequestSpan that also reports the storage offset.
func (p Producer) RequestSpanAt(n int) ([]byte, int, error) {
	if n < 0 {
		return nil, 0, fmt.Errorf("request span of %d bytes: %w", n, api.ErrInvalidArgument)
	}
	r := p.r
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		if r.contiguousFree() >= n {
			break
		}
		if r.head >= r.tail && r.tail-1 >= n {
			r.fence = r.head
			r.edge = r.head
			r.head = 0
			break
		}
		if !r.growFor(n) {
			return nil, 0, fmt.Errorf("request span of %d bytes: %w", n, api.ErrCapacityExceeded)
		}
	}
	r.span = n
	return r.buf[r.head : r.head+n : r.head+n], r.head, nil
}

// FreeSpan returns the largest contiguous writable run at head, growing the
// ring first when there is none. The span is published by CommitSpan.
func (p Producer) FreeSpan() ([]byte, error) {
	r := p.r
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.contiguousFree()
	if n == 0 {
		if !r.growFor(1) {
			return nil, fmt.Errorf("free span: %w", api.ErrCapacityExceeded)
		}
		n = r.contiguousFree()
	}
	r.span = n
	return r.buf[r.head : r.head+n : r.head+n], nil
}

// CommitSpan publishes the first n bytes of the last granted span.
func (p Producer) CommitSpan(n int) error {
	r := p.r
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.span < 0 {
		return api.ErrSpanNotRequested
	}
	if n < 0 || n > r.span {
		return fmt.Errorf("commit %d of %d span bytes: %w", n, r.span, api.ErrInvalidArgument)
	}
	r.span = -1
	r.advanceHead(n)
	return nil
}

// Fence returns the live fence, 0 when unset.
func (p Producer) Fence() int {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	return p.r.fence
}

// ResetFence clears the live fence. It is called right after a snapshot has
// captured it so a later wrap is not confused with the captured one.
func (p Producer) ResetFence() {
	p.r.mu.Lock()
	p.r.fence = 0
	p.r.mu.Unlock()
}

// contiguousFree is the writable run starting at head. When tail is 0 the
// last physical slot must stay empty.
func (r *ring) contiguousFree() int {
	if r.head < r.tail {
		return r.tail - r.head - 1
	}
	n := len(r.buf) - r.head
	if r.tail == 0 {
		n--
	}
	return n
}
