package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

type themesOptions struct {
	jsonOutput bool
	css        bool
}

func newThemesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "Inspect the built-in theme catalog",
	}
	cmd.AddCommand(newThemesListCmd())
	cmd.AddCommand(newThemesResolveCmd())
	return cmd
}

func newThemesListCmd() *cobra.Command {
	opts := &themesOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List presets and theme packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := theme.LoadCatalog()
			if err != nil {
				return err
			}
			entries := catalog.Entries()
			if opts.jsonOutput {
				return writeIndented(cmd, entries)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tNAME")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Kind, e.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func newThemesResolveCmd() *cobra.Command {
	opts := &themesOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Print the resolved theme, or its CSS with --css",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := theme.LoadCatalog()
			if err != nil {
				return err
			}
			resolved, ok := theme.NewSelector(catalog, nil, nil).Lookup(args[0])
			if !ok {
				return fmt.Errorf("theme %q not found", args[0])
			}
			if opts.css {
				_, err := fmt.Fprint(cmd.OutOrStdout(), resolved.CSS())
				return err
			}
			return writeIndented(cmd, resolved)
		},
	}

	cmd.Flags().BoolVar(&opts.css, "css", false, "Print the :root CSS block")
	return cmd
}

func writeIndented(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
