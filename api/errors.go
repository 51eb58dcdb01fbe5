// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-netclient.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrCapacityExceeded = errors.New("buffer capacity exceeded")
	ErrAlreadyConnected = errors.New("client is already connected or connecting")
	ErrNotConnected     = errors.New("client is not connected")
	ErrNeverConnected   = errors.New("client was never connected")
	ErrBadHost          = errors.New("malformed host")
	ErrBadPort          = errors.New("port out of range")
	ErrConnectAborted   = errors.New("connect aborted")
	ErrSpanNotRequested = errors.New("commit without a granted span")
	ErrNotSupported     = errors.New("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeCapacityExceeded
	ErrCodeConnect
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the wrapped sentinel to errors.Is.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
