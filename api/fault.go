// Package api
// Author: momentics@gmail.com
//
// Tagged I/O results. Socket adapters classify every failure into a Fault so
// the client picks a disconnect code by matching a value, not an error type.

package api

import (
	"errors"
	"fmt"
)

// Fault tags the cause of a failed socket operation.
type Fault uint8

const (
	FaultNone Fault = iota
	FaultEOF
	FaultClosed
	FaultReset
	FaultTimeout
	FaultUnsupported
	FaultRefused
	FaultCanceled
	FaultUnresolved
	FaultIO
)

var faultNames = [...]string{
	FaultNone:        "none",
	FaultEOF:         "eof",
	FaultClosed:      "closed",
	FaultReset:       "reset",
	FaultTimeout:     "timeout",
	FaultUnsupported: "unsupported",
	FaultRefused:     "refused",
	FaultCanceled:    "canceled",
	FaultUnresolved:  "unresolved",
	FaultIO:          "io",
}

func (f Fault) String() string {
	if int(f) < len(faultNames) {
		return faultNames[f]
	}
	return fmt.Sprintf("fault(%d)", uint8(f))
}

// IOError is the tagged result returned by Stream and Dialer implementations.
type IOError struct {
	Op    string
	Fault Fault
	Err   error
}

func (e *IOError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Fault.String()
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Fault, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FaultOf extracts the fault tag of err. Untagged errors are FaultIO.
func FaultOf(err error) Fault {
	if err == nil {
		return FaultNone
	}
	var ioe *IOError
	if errors.As(err, &ioe) {
		return ioe.Fault
	}
	return FaultIO
}
