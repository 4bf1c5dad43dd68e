package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dewantaratirta/agentkit/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /api/agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				host, port, err := splitAddr(addr)
				if err != nil {
					return err
				}
				cfg.Listen.Address, cfg.Listen.Port = host, port
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			return runServer(cmd.Context(), a)
		},
	}

	cmd.Flags().String("addr", "", "listen address host:port (overrides listen.address/listen.port)")

	return cmd
}

func runServer(parent context.Context, a *app) error {
	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(a.cfg.Listen.Addr(), a.service, func(o *server.Options) {
		o.Logger = a.logger.With("component", "server")
		o.CORSOrigins = a.cfg.Listen.CORSOrigins
	})

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return srv.Start(ctx) })

	eg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
