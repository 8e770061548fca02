package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bastiangx/suggestd/internal/cli"
	"github.com/bastiangx/suggestd/pkg/config"
	"github.com/bastiangx/suggestd/pkg/server"
	"github.com/bastiangx/suggestd/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newPopulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Extract keywords from the document source and load them into the completion index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signalContext()
			defer cancel()
			if timeout := app.cfg.Populate.Timeout(); timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			pager, closePager, err := app.pager()
			if err != nil {
				return err
			}
			defer closePager()

			report, err := suggest.Populate(ctx, pager, app.extractor(), suggest.NewWriter(app.client))
			if err != nil {
				return fmt.Errorf("populate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			return nil
		},
	}
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve suggestions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signalContext()
			defer cancel()

			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.cfg.Server.Addr
			}
			srv := server.NewHTTPServer(app.service(), addr, app.cfg.Server.QueryTimeout())
			showStartupInfo(app, addr)
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from config)")
	return cmd
}

func newIPCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ipc",
		Short: "Serve suggestions as msgpack over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signalContext()
			defer cancel()

			srv := server.NewIPCServer(app.service(), cmd.InOrStdin(), cmd.OutOrStdout(), app.cfg.Server.QueryTimeout())
			return srv.Start(ctx)
		},
	}
	return cmd
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [prefix]",
		Short: "Query suggestions from the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signalContext()
			defer cancel()

			handler := cli.NewInputHandler(app.service(), app.cfg.Server.QueryTimeout(), cmd.InOrStdin(), cmd.OutOrStdout())
			interactive, _ := cmd.Flags().GetBool("interactive")
			if interactive {
				return handler.Start(ctx)
			}
			return handler.Query(ctx, strings.Join(args, " "))
		},
	}
	cmd.Flags().BoolP("interactive", "i", false, "Read prefixes from stdin until EOF")
	return cmd
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// showStartupInfo displays some basic info about the serve process.
func showStartupInfo(a *app, addr string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("config: ( %s )", config.GetActiveConfigPath(a.cfgPath))
	log.Infof("index: %s", a.cfg.Index.Backend)
	log.Infof("addr: %s", addr)
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
