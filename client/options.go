// File: client/options.go
// Package client defines functional options for the Client.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/control"
)

// Option customizes client initialization.
type Option func(*Client)

// WithDialer replaces the default TCP dialer.
func WithDialer(d api.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithHandler sets the lifecycle event handler.
func WithHandler(h api.EventHandler) Option {
	return func(c *Client) {
		c.handler = h
	}
}

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *control.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithReceiveHook registers fn to run on the fill goroutine after every read
// that committed bytes to the inbound buffer. It must not block.
func WithReceiveHook(fn func(n int)) Option {
	return func(c *Client) {
		c.onReceive = fn
	}
}
