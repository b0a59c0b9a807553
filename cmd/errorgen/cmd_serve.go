package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/renatobalun/langchain-error/internal/generator"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	var port int
	interval := defaultRotationInterval()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the rotation loop with an HTTP status server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := generator.DefaultCatalog()
			if err != nil {
				return err
			}
			rot := generator.NewRotation(len(cat))
			client := g.client()

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           generator.NewServer(cat, rot, client, g.webhookURL, interval).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.Go(func() error {
				return generator.Run(ctx, client, cat, rot, interval)
			})
			eg.Go(func() error {
				slog.Info("status server listening", "addr", srv.Addr, "webhook_url", g.webhookURL)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("status server: %w", err)
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return eg.Wait()
		},
	}
	cmd.Flags().IntVar(&port, "port", 8001, "status server port")
	cmd.Flags().DurationVar(&interval, "interval", interval, "rotation interval (env ERROR_ROTATION_INTERVAL, seconds)")
	return cmd
}
