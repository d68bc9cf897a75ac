package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/schema"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

type validateOptions struct {
	kind string
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a token set, preset or theme pack against the schema",
		Long: "Check a token set, preset or theme pack against the schema.\n" +
			"Files ending in .yaml or .yml are read as YAML, everything else as JSON. " +
			"Use - to read JSON from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", string(theme.DocumentTokens), "document kind: tokens, preset or pack")

	return cmd
}

func runValidate(cmd *cobra.Command, path string, opts *validateOptions) error {
	data, err := readDocument(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	err = theme.ParseDocument(theme.DocumentKind(opts.kind), data)
	if err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s\n", path, opts.kind)
		return nil
	}

	report, ok := schema.AsValidationError(err)
	if !ok {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range report.Paths() {
		for _, msg := range report.Fields[p] {
			fmt.Fprintf(out, "%s: %s %s\n", path, p, msg)
		}
	}
	return fmt.Errorf("%s: %d invalid field(s)", path, report.Len())
}

// readDocument returns the file as JSON, converting YAML input.
func readDocument(stdin io.Reader, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("convert %s to JSON: %w", path, err)
		}
	}
	return data, nil
}
