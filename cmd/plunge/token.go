package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/auth"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/config"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/server"
)

type tokenOptions struct {
	actor string
	name  string
}

func newTokenCmd(flags *rootFlags) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for settings writes",
		Long: "Issue an access token signed with auth.jwt_secret. The actor id is\n" +
			"recorded in the settings audit trail.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := server.LoadConfig(flags.configPath)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			tokens, err := auth.NewTokenServiceFromConfig(config.New(v))
			if err != nil {
				return err
			}
			tok, err := tokens.IssueAccessToken(opts.actor, opts.name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.actor, "actor", "", "actor id recorded in the audit trail (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "display name carried in the token")
	_ = cmd.MarkFlagRequired("actor")

	return cmd
}
