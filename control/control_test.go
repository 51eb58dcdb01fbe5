package control_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/control"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := control.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4096, cfg.OutboundCapacity)
	assert.Equal(t, 8192, cfg.InboundCapacity)
	assert.True(t, cfg.NoDelay)
}

func TestParseConfig(t *testing.T) {
	cfg, err := control.ParseConfig([]byte(`
host: example.org
port: 7000
outbound_capacity: 1024
dial_timeout: 2s
keep_alive: -1s
no_delay: false
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, "example.org", cfg.Host)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 1024, cfg.OutboundCapacity)
	assert.Equal(t, 8192, cfg.InboundCapacity, "unset keys keep defaults")
	assert.Equal(t, 2*time.Second, cfg.DialTimeout)
	assert.Equal(t, -time.Second, cfg.KeepAlive)
	assert.False(t, cfg.NoDelay)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	empty, err := control.ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, control.DefaultConfig(), empty)
}

func TestParseConfigRejects(t *testing.T) {
	_, err := control.ParseConfig([]byte("bogus_key: 1\n"))
	assert.Error(t, err)

	_, err = control.ParseConfig([]byte("port: 70000\nlog_level: loud\n"))
	assert.ErrorIs(t, err, api.ErrBadPort)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)

	_, err = control.ParseConfig([]byte("max_capacity: 2048\ninbound_capacity: 4096\n"))
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestLoadConfigAndStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7001\n"), 0o600))

	cfg, err := control.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port)

	_, err = control.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	store := control.NewStore(cfg)
	var seen []int
	store.OnReload(func(old, cur *control.Config) {
		seen = append(seen, old.Port, cur.Port)
	})
	require.NoError(t, os.WriteFile(path, []byte("port: 7002\n"), 0o600))
	require.NoError(t, store.Reload(path))
	assert.Equal(t, []int{7001, 7002}, seen)
	assert.Equal(t, 7002, store.Snapshot().Port)

	bad := control.DefaultConfig()
	bad.Port = -1
	assert.Error(t, store.Set(bad))
	assert.Equal(t, 7002, store.Snapshot().Port)
}

func TestNewLogger(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.LogLevel = "warn"
	log, lvl, err := cfg.NewLogger()
	require.NoError(t, err)
	defer func() { _ = log.Sync() }()
	assert.Equal(t, zapcore.WarnLevel, lvl.Level())
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := control.NewMetrics(reg)
	require.NoError(t, err)

	m.Sent(10)
	m.Sent(5)
	m.Received(7)
	m.Flushed()
	m.Drained()
	m.Grew("outbound", 2)
	m.Disconnected(api.CodePeerClosed)
	m.State(api.Connected)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = control.NewMetrics(reg)
	assert.Error(t, err, "duplicate registration")

	var nilMetrics *control.Metrics
	assert.NotPanics(t, func() {
		nilMetrics.Sent(1)
		nilMetrics.Disconnected(api.CodeClosed)
		nilMetrics.State(api.Connecting)
	})
}

func TestDebugProbes(t *testing.T) {
	dp := control.NewDebugProbes()
	dp.RegisterProbe("answer", func() any { return 42 })
	state := dp.DumpState()
	assert.Equal(t, 42, state["answer"])
	assert.Contains(t, state, "runtime.goroutines")

	dp.RegisterProbe("answer", func() any { return 43 })
	assert.Equal(t, 43, dp.DumpState()["answer"], "a name is replaced, not duplicated")
}
