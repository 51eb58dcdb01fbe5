// File: cmd/netclient/connect.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/momentics/hioload-netclient/api"
	"github.com/momentics/hioload-netclient/client"
	"github.com/momentics/hioload-netclient/control"
)

func newConnectCmd(a *app) *cobra.Command {
	var (
		host        string
		port        int
		tick        time.Duration
		linger      time.Duration
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Send stdin lines to a peer and print what comes back",
		Long: `Connect reads lines from stdin and queues each one on the client.
Queued bytes are flushed once per tick, the way a session manager drives the
transport. Received bytes are written to stdout as they arrive. After stdin
ends the command waits for the linger period and exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.store.Snapshot()
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			defer a.watchReload()()

			var reg *prometheus.Registry
			if metricsAddr != "" {
				reg = prometheus.NewRegistry()
				srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.log.Warn("metrics listener", zap.Error(err))
					}
				}()
				defer srv.Close()
			}
			var metrics *control.Metrics
			if reg != nil {
				m, err := control.NewMetrics(reg)
				if err != nil {
					return err
				}
				metrics = m
			}
			return runConnect(ctx, a.log, &cfg, metrics, tick, linger, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "peer host (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "peer port (default from config)")
	cmd.Flags().DurationVar(&tick, "tick", 10*time.Millisecond, "flush interval")
	cmd.Flags().DurationVar(&linger, "linger", time.Second, "time to wait for replies after stdin ends")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func runConnect(ctx context.Context, log *zap.Logger, cfg *control.Config, m *control.Metrics,
	tick, linger time.Duration, in io.Reader, out io.Writer) error {

	received := make(chan struct{}, 1)
	disconnected := make(chan api.DisconnectCode, 1)
	c := client.New(cfg,
		client.WithLogger(log),
		client.WithMetrics(m),
		client.WithReceiveHook(func(int) {
			select {
			case received <- struct{}{}:
			default:
			}
		}),
		client.WithHandler(api.HandlerFuncs{
			Disconnected: func(code api.DisconnectCode) {
				select {
				case disconnected <- code:
				default:
				}
			},
		}),
	)
	probes := control.NewDebugProbes()
	c.RegisterProbes(probes)
	if err := c.Connect(ctx, cfg.Host, cfg.Port); err != nil {
		return err
	}
	defer c.Close()
	defer func() { log.Debug("session summary", zap.Any("probes", probes.DumpState())) }()

	lines := make(chan []byte)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			line := make([]byte, 0, len(sc.Bytes())+1)
			line = append(append(line, sc.Bytes()...), '\n')
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	var lingerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				lingerC = time.After(linger)
				continue
			}
			if err := c.Send(line); err != nil {
				return err
			}
		case <-ticker.C:
			c.Flush()
		case <-received:
			if err := copyInbound(c, out); err != nil {
				return err
			}
		case code := <-disconnected:
			if err := copyInbound(c, out); err != nil {
				return err
			}
			if code == api.CodePeerClosed {
				return nil
			}
			return fmt.Errorf("disconnected: %s", code)
		case <-lingerC:
			return copyInbound(c, out)
		}
	}
}

func copyInbound(c *client.Client, out io.Writer) error {
	for {
		view := c.BeginRead()
		if len(view) == 0 {
			return nil
		}
		if _, err := out.Write(view); err != nil {
			return err
		}
		if err := c.EndRead(len(view)); err != nil {
			return err
		}
	}
}
