package main

import (
	"github.com/renatobalun/langchain-error/internal/generator"
	"github.com/spf13/cobra"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	interval := defaultRotationInterval()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rotate through the catalog, sending one error per interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := generator.DefaultCatalog()
			if err != nil {
				return err
			}
			return generator.Run(cmd.Context(), g.client(), cat, generator.NewRotation(len(cat)), interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", interval, "rotation interval (env ERROR_ROTATION_INTERVAL, seconds)")
	return cmd
}
