// Package main is the entrypoint for errorgen, the synthetic error sender.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/renatobalun/langchain-error/internal/generator"
	"github.com/renatobalun/langchain-error/internal/telemetry"
	"github.com/spf13/cobra"
)

const (
	defaultWebhookURL = "http://localhost:8000/webhook/error"
	defaultInterval   = 60 * time.Second
	sendTimeout       = 10 * time.Second
)

type globalFlags struct {
	webhookURL string
	token      string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "errorgen",
		Short:         "Send synthetic production errors to the ingestion webhook",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(telemetry.NewLogger(cmd.ErrOrStderr(), g.logLevel))
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&g.webhookURL, "webhook-url", envOr("WEBHOOK_URL", defaultWebhookURL), "ingestion webhook URL (env WEBHOOK_URL)")
	f.StringVar(&g.token, "token", os.Getenv("WEBHOOK_TOKEN"), "bearer token for the webhook (env WEBHOOK_TOKEN)")
	f.StringVar(&g.logLevel, "log-level", envOr("LOG_LEVEL", "info"), "debug, info, warn or error")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSendCmd(g))
	cmd.AddCommand(newRunCmd(g))
	cmd.AddCommand(newServeCmd(g))
	return cmd
}

func (g *globalFlags) client() *generator.WebhookClient {
	return generator.NewWebhookClient(g.webhookURL, g.token, sendTimeout)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// defaultRotationInterval reads ERROR_ROTATION_INTERVAL as whole seconds.
func defaultRotationInterval() time.Duration {
	v := os.Getenv("ERROR_ROTATION_INTERVAL")
	if v == "" {
		return defaultInterval
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return defaultInterval
	}
	return time.Duration(secs) * time.Second
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
