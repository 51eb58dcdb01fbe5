// File: cmd/netclient/root.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/momentics/hioload-netclient/control"
)

// app is the state shared by subcommands, set during PersistentPreRun.
type app struct {
	cfgFile  string
	logLevel string

	store *control.Store
	log   *zap.Logger
	level zap.AtomicLevel
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "netclient",
		Short:         "Asynchronous TCP client transport driver",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log_level from the config")
	root.AddCommand(newConnectCmd(a), newEchoCmd(a))
	return root
}

func (a *app) init() error {
	cfg := control.DefaultConfig()
	if a.cfgFile != "" {
		loaded, err := control.LoadConfig(a.cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, level, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	a.log, a.level = log, level
	a.store = control.NewStore(cfg)
	a.store.OnReload(func(old, cur *control.Config) {
		if a.logLevel != "" {
			return
		}
		if lvl, err := cur.Level(); err == nil && lvl != a.level.Level() {
			a.level.SetLevel(lvl)
			a.log.Info("log level changed", zap.Stringer("level", lvl))
		}
	})
	return nil
}

// watchReload re-reads the config file on SIGHUP until stop is called.
func (a *app) watchReload() (stop func()) {
	if a.cfgFile == "" {
		return func() {}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				if err := a.store.Reload(a.cfgFile); err != nil {
					a.log.Warn("config reload failed", zap.Error(err))
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
