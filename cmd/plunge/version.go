package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return err
		},
	}
}
