// control/store.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with reload propagation.

package control

import (
	"sync"
	"sync/atomic"
)

// Store holds the current Config and notifies listeners when it is replaced.
type Store struct {
	cur atomic.Pointer[Config]

	mu        sync.Mutex
	listeners []func(old, cur *Config)
}

// NewStore initializes a store; nil means DefaultConfig.
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Store{}
	s.cur.Store(cfg)
	return s
}

// Snapshot returns the current config. Callers must not mutate it.
func (s *Store) Snapshot() *Config {
	return s.cur.Load()
}

// Set validates and installs cfg, then invokes listeners synchronously.
func (s *Store) Set(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cur.Swap(cfg)
	for _, fn := range s.listeners {
		fn(old, cfg)
	}
	return nil
}

// Reload re-reads path and installs the result.
func (s *Store) Reload(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	return s.Set(cfg)
}

// OnReload registers a listener called after every successful Set.
func (s *Store) OnReload(fn func(old, cur *Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
