package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/backup"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/server"
)

func newBackupCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the settings database and configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := server.LoadConfig(flags.configPath)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if output == "" {
				output = fmt.Sprintf("plunge-backup-%s.tar.gz", time.Now().UTC().Format("20060102-150405"))
			}

			if err := backup.Backup(cmd.Context(), v.GetString("database.path"), v.ConfigFileUsed(), output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default plunge-backup-<timestamp>.tar.gz)")
	return cmd
}

func newRestoreCmd(flags *rootFlags) *cobra.Command {
	var (
		target string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore a backup archive",
		Long:  "Restore a backup archive. Stop the server first; the database is replaced in place.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				v, err := server.LoadConfig(flags.configPath)
				if err != nil {
					return fmt.Errorf("load configuration: %w", err)
				}
				target = filepath.Dir(v.GetString("database.path"))
			}

			restored, err := backup.Restore(cmd.Context(), args[0], target, force)
			if err != nil {
				return err
			}
			for _, path := range restored {
				fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "directory to restore into (default: the database directory)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}
