// File: api/events.go
// Package api defines connection lifecycle callbacks.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// EventHandler receives connection lifecycle notifications. OnDisconnect is
// invoked exactly once per connection attempt that ends.
type EventHandler interface {
	OnConnect()
	OnDisconnect(code DisconnectCode)
}

// HandlerFuncs adapts plain functions to EventHandler. Nil fields are skipped.
type HandlerFuncs struct {
	Connected    func()
	Disconnected func(code DisconnectCode)
}

// OnConnect implements EventHandler.
func (h HandlerFuncs) OnConnect() {
	if h.Connected != nil {
		h.Connected()
	}
}

// OnDisconnect implements EventHandler.
func (h HandlerFuncs) OnDisconnect(code DisconnectCode) {
	if h.Disconnected != nil {
		h.Disconnected(code)
	}
}
