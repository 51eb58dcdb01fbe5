// File: core/buffer/snapshot.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Snapshots delimit what a drain may send. The producer captures one on
// flush; the consumer sends exactly that range even if head has since moved.

package buffer

// Snapshot is an immutable record of the producer boundary at flush time.
type Snapshot struct {
	Head  int // head at capture
	Fence int // live fence at capture, 0 when unset

	mark uint64 // cumulative bytes written at capture
	gen  uint64 // ring generation at capture
}

// Mark returns the cumulative byte count covered by the snapshot.
func (s Snapshot) Mark() uint64 { return s.mark }

// Capture records the current head and fence. The caller resets the fence
// right after queueing the snapshot.
func (p Producer) Capture() Snapshot {
	r := p.r
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{Head: r.head, Fence: r.fence, mark: r.written, gen: r.gen}
}

// Pending returns the bytes of s not yet released, as one or two segments:
// [tail, s.Head), or [tail, s.Fence) then [0, s.Head) when the range wraps
// (the physical end stands in for an unset fence). If the ring was relocated
// after the capture the range is the first s.Mark()-released bytes from tail.
//
// The segments alias ring storage. They stay valid until Release even if the
// producer grows the ring meanwhile, because growth never writes old storage.
func (c Consumer) Pending(s Snapshot) (first, second []byte) {
	r := c.r
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.mark <= r.read {
		return nil, nil
	}
	if s.gen == r.gen {
		if s.Head >= r.tail {
			return r.buf[r.tail:s.Head], nil
		}
		end := s.Fence
		if end == 0 {
			end = len(r.buf)
		}
		return r.buf[r.tail:end], r.buf[:s.Head]
	}
	n := int(s.mark - r.read)
	if r.head >= r.tail || r.edge-r.tail >= n {
		return r.buf[r.tail : r.tail+n], nil
	}
	run := r.edge - r.tail
	return r.buf[r.tail:r.edge], r.buf[:n-run]
}

// Release advances tail past the range of s and returns its length in bytes.
func (c Consumer) Release(s Snapshot) int {
	r := c.r
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.mark <= r.read {
		return 0
	}
	n := int(s.mark - r.read)
	r.advanceTail(n)
	r.read = s.mark
	return n
}
