package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/renatobalun/langchain-error/internal/generator"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the catalog of synthetic errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := generator.DefaultCatalog()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tNAME\tSEVERITY\tSTATUS")
			for i, e := range cat {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i, e.Name, e.Severity, e.StatusCode)
			}
			return tw.Flush()
		},
	}
}
