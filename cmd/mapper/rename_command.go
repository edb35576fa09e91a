package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photomapper/internal/reconcile"
)

func newRenameCommand() *cobra.Command {
	var assignmentsPath string
	var yes bool

	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename Drive photos to their confirmed player names",
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

			confirm := func(count int) bool {
				if yes {
					return true
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rename %d file(s) in Drive? [y/N]: ", count)
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer := strings.ToLower(strings.TrimSpace(line))
				return answer == "y" || answer == "yes"
			}

			result, err := session.SubmitRenames(cmd.Context(), confirm)
			switch {
			case errors.Is(err, reconcile.ErrNoOperations):
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to rename: every assignment already matches its photo.")
				return nil
			case errors.Is(err, reconcile.ErrDeclined):
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted; nothing was submitted.")
				return nil
			}
			if result != nil {
				// The endpoint's accounting, verbatim. Partial copies may
				// leave the buckets short of the total.
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %d, skipped %d, failed %d (of %d submitted)\n",
					result.Successful, result.Skipped, result.Failed, result.Total)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&assignmentsPath, "assignments", "", "JSON file of per-photo assignment overrides")
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}
