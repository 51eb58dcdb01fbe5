// File: core/buffer/grow.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

// growFor relocates the ring into storage large enough to accept n more
// bytes. The pending sequence is relayed to offset 0 in order, dropping any
// dead region, so tail becomes 0 and head the pending length. At the bound
// the ring is compacted in place instead. It reports false only when n does
// not fit even then.
func (r *ring) growFor(n int) bool {
	need := r.dataLen() + n + 1
	if need > r.max {
		return false
	}
	size := len(r.buf) * 2
	if size < need {
		size = nextPowerOfTwo(need)
	}
	if size > r.max {
		size = r.max
	}
	if size > len(r.buf) {
		r.grows++
	}
	r.relay(size)
	return true
}

func (r *ring) relay(size int) {
	next := make([]byte, size)
	var k int
	if r.head >= r.tail {
		k = copy(next, r.buf[r.tail:r.head])
	} else {
		k = copy(next, r.buf[r.tail:r.edge])
		k += copy(next[k:], r.buf[:r.head])
	}
	r.buf = next
	r.mask = size - 1
	r.tail = 0
	r.head = k
	r.fence = 0
	r.edge = size
	r.span = -1
	r.gen++
}

// nextPowerOfTwo rounds n up to a power of two.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	u := uint64(n - 1)
	u |= u >> 1
	u |= u >> 2
	u |= u >> 4
	u |= u >> 8
	u |= u >> 16
	u |= u >> 32
	return int(u + 1)
}
