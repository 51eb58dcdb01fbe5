// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, metrics and debug introspection for hioload-netclient.
//
// Provides:
//   - Config with defaults, validation and YAML loading
//   - Store for atomic config snapshots with reload listeners
//   - Prometheus-backed client metrics
//   - Debug probe registration
package control
