// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

import "strconv"

// ConnState enumerates the lifecycle of a client connection.
type ConnState int32

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// DisconnectCode is passed to disconnect handlers. Zero and positive values
// terminate an established connection, negative values a failed connect.
type DisconnectCode int

const (
	CodeClosed         DisconnectCode = 0
	CodeTransferFailed DisconnectCode = 1
	CodePeerClosed     DisconnectCode = 2

	CodeBadHost    DisconnectCode = -1
	CodeBadPort    DisconnectCode = -2
	CodeAborted    DisconnectCode = -3
	CodeRefused    DisconnectCode = -4
	CodeUnresolved DisconnectCode = -5
)

// ConnectFailure reports whether the code ends a connect attempt that never
// reached Connected.
func (c DisconnectCode) ConnectFailure() bool { return c < 0 }

func (c DisconnectCode) String() string {
	switch c {
	case CodeClosed:
		return "closed"
	case CodeTransferFailed:
		return "transfer failed"
	case CodePeerClosed:
		return "peer closed"
	case CodeBadHost:
		return "bad host"
	case CodeBadPort:
		return "bad port"
	case CodeAborted:
		return "aborted"
	case CodeRefused:
		return "refused"
	case CodeUnresolved:
		return "unresolved"
	default:
		return "code(" + strconv.Itoa(int(c)) + ")"
	}
}

// TransportStats provides a standard layout for per-client traffic reporting.
type TransportStats struct {
	State           ConnState
	BytesSent       uint64
	BytesReceived   uint64
	Flushes         uint64
	QueuedFlushes   int
	OutboundCap     int
	OutboundPending int
	InboundCap      int
	InboundPending  int
}
