// Package api
// Author: momentics@gmail.com
//
// Byte ring contracts shared by the client and external framers.

package api

// SpanWriter hands out contiguous writable regions so a framer can encode a
// message in place instead of copying it twice.
type SpanWriter interface {
	// RequestSpan returns exactly n contiguous writable bytes.
	RequestSpan(n int) ([]byte, error)
	// CommitSpan publishes the first n bytes of the last granted span.
	CommitSpan(n int) error
}

// SpanReader exposes received bytes without copying.
type SpanReader interface {
	// BeginRead returns the physically contiguous unread bytes.
	BeginRead() []byte
	// EndRead marks n bytes of the last BeginRead view as consumed.
	EndRead(n int) error
}
