// File: core/concurrency/gate.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Gate parks a background goroutine until the producer signals new work.

package concurrency

// Gate is a one-slot wake-up signal. Signals raised while the waiter is busy
// collapse into one pending wake-up; nothing spins.
type Gate struct {
	ch chan struct{}
}

// NewGate returns a closed (not signaled) gate.
func NewGate() *Gate {
	return &Gate{ch: make(chan struct{}, 1)}
}

// Open signals the waiter. It never blocks and reports whether this call
// raised the signal.
func (g *Gate) Open() bool {
	select {
	case g.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Wait blocks until the gate is opened or done is closed. It returns
// ErrGateClosed in the latter case.
func (g *Gate) Wait(done <-chan struct{}) error {
	select {
	case <-done:
		return ErrGateClosed
	default:
	}
	select {
	case <-g.ch:
		return nil
	case <-done:
		return ErrGateClosed
	}
}
