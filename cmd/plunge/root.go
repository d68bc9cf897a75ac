package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "plunge",
		Short:         "Power Plunge storefront theme and site settings service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to configuration file")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newThemesCmd())
	cmd.AddCommand(newTokenCmd(flags))
	cmd.AddCommand(newBackupCmd(flags))
	cmd.AddCommand(newRestoreCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
