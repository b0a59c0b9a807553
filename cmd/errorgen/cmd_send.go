package main

import (
	"fmt"
	"time"

	"github.com/renatobalun/langchain-error/internal/generator"
	"github.com/spf13/cobra"
)

func newSendCmd(g *globalFlags) *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one catalog error to the webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := generator.DefaultCatalog()
			if err != nil {
				return err
			}
			rot := generator.NewRotation(len(cat))
			if err := rot.Set(index); err != nil {
				return fmt.Errorf("invalid --index: %w", err)
			}

			payload, status, err := generator.SendCurrent(cmd.Context(), g.client(), cat, rot, time.Now())
			if err != nil {
				return fmt.Errorf("send %s: %w", payload["error_name"], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s (%s) -> %d\n", payload["error_name"], payload["error_id"], status)
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "catalog index to send (see 'errorgen list')")
	return cmd
}
