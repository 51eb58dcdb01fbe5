// File: transport/tcp/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package tcp dials client streams with tuned socket options and hosts a
// small echo server used by tests and the CLI.
package tcp
