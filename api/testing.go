// Package api
// Author: momentics
//
// Mock/testing utilities for the core contracts.

package api

// MockStream is a test and mock-friendly implementation of Stream.
type MockStream struct {
	ReadFunc  func(p []byte) (int, error)
	WriteFunc func(p []byte) (int, error)
	CloseFunc func() error
}

func (m *MockStream) Read(p []byte) (int, error)  { return m.ReadFunc(p) }
func (m *MockStream) Write(p []byte) (int, error) { return m.WriteFunc(p) }
func (m *MockStream) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}
