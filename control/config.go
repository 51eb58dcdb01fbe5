// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Client configuration: defaults, validation and YAML loading.

package control

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/core/buffer"
)

// Config holds client and socket parameters.
type Config struct {
	Host string `yaml:"host"` // default peer for the CLI
	Port int    `yaml:"port"`

	OutboundCapacity int `yaml:"outbound_capacity"` // initial send ring size
	InboundCapacity  int `yaml:"inbound_capacity"`  // initial receive ring size
	MaxCapacity      int `yaml:"max_capacity"`      // growth bound for both rings

	DialTimeout time.Duration `yaml:"dial_timeout"` // 0 = bounded by ctx only
	NoDelay     bool          `yaml:"no_delay"`     // TCP_NODELAY
	KeepAlive   time.Duration `yaml:"keep_alive"`   // negative disables
	SendBuffer  int           `yaml:"send_buffer"`  // SO_SNDBUF, 0 = OS default
	RecvBuffer  int           `yaml:"recv_buffer"`  // SO_RCVBUF, 0 = OS default

	LogLevel string `yaml:"log_level"` // debug, info, warn, error
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:             "127.0.0.1",
		Port:             9000,
		OutboundCapacity: buffer.DefaultOutboundCapacity,
		InboundCapacity:  buffer.DefaultInboundCapacity,
		MaxCapacity:      buffer.DefaultMaxCapacity,
		DialTimeout:      10 * time.Second,
		NoDelay:          true,
		KeepAlive:        15 * time.Second,
		LogLevel:         "info",
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d: %w", c.Port, api.ErrBadPort))
	}
	if c.OutboundCapacity < 0 {
		errs = append(errs, fmt.Errorf("outbound_capacity %d: %w", c.OutboundCapacity, api.ErrInvalidArgument))
	}
	if c.InboundCapacity < 0 {
		errs = append(errs, fmt.Errorf("inbound_capacity %d: %w", c.InboundCapacity, api.ErrInvalidArgument))
	}
	if c.MaxCapacity < 0 {
		errs = append(errs, fmt.Errorf("max_capacity %d: %w", c.MaxCapacity, api.ErrInvalidArgument))
	}
	if c.MaxCapacity > 0 && (c.MaxCapacity < c.OutboundCapacity || c.MaxCapacity < c.InboundCapacity) {
		errs = append(errs, fmt.Errorf("max_capacity %d below initial capacity: %w", c.MaxCapacity, api.ErrInvalidArgument))
	}
	if c.DialTimeout < 0 {
		errs = append(errs, fmt.Errorf("dial_timeout %s: %w", c.DialTimeout, api.ErrInvalidArgument))
	}
	if c.SendBuffer < 0 || c.RecvBuffer < 0 {
		errs = append(errs, fmt.Errorf("socket buffers %d/%d: %w", c.SendBuffer, c.RecvBuffer, api.ErrInvalidArgument))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel; empty means info.
func (c *Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("log_level %q: %w", c.LogLevel, api.ErrInvalidArgument)
	}
	return lvl, nil
}

// NewLogger builds a production zap logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, zap.AtomicLevel, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	log, err := zc.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	return log, zc.Level, nil
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
