package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"photomapper/internal/export"
)

func newExportCommand() *cobra.Command {
	var assignmentsPath string
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the confirmed mappings as a CSV artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd)
			if err != nil {
				return err
			}

			overrides, err := loadOverrides(assignmentsPath)
			if err != nil {
				return err
			}
			for _, id := range applyOverrides(session.Assignments(), overrides) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: unknown photo id in assignments file: %s\n", id)
			}

			payload, name, err := session.ExportCSV()
			if errors.Is(err, export.ErrNoEligibleRows) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to export: every photo is unassigned or excluded.")
				return nil
			}
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, payload, 0o644); err != nil {
				return fmt.Errorf("write artifact: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&assignmentsPath, "assignments", "", "JSON file of per-photo assignment overrides")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the CSV artifact into")
	return cmd
}
