// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import "errors"

var (
	// ErrQueueClosed indicates the queue no longer accepts items
	ErrQueueClosed = errors.New("queue is closed")

	// ErrGateClosed indicates the gate was shut down while waiting
	ErrGateClosed = errors.New("gate is closed")
)
