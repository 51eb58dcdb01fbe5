// File: cmd/netclient/echo.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/momentics/hioload-netclient/transport/tcp"
)

func newEchoCmd(a *app) *cobra.Command {
	var (
		listen   string
		mute     bool
		maxConns int
	)
	cmd := &cobra.Command{
		Use:   "echo",
		Short: "Run a loopback TCP echo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := tcp.ListenEcho(listen, tcp.EchoConfig{
				MaxConnections: maxConns,
				Mute:           mute,
				Logger:         a.log,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", srv.Addr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errc := make(chan error, 1)
			go func() { errc <- srv.Wait() }()
			select {
			case <-ctx.Done():
			case err := <-errc:
				return err
			}
			return srv.Close()
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:9000", "listen address")
	cmd.Flags().BoolVar(&mute, "mute", false, "record without echoing")
	cmd.Flags().IntVar(&maxConns, "max-conns", 0, "connection limit, 0 = unlimited")
	return cmd
}
