package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the current photo-to-player suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd)
			if err != nil {
				return err
			}
			snap := session.Snapshot()

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Filename", "Suggested Player", "Confidence", "Type", "Alternatives"})
			for _, m := range snap.Mappings {
				tw.AppendRow(table.Row{
					m.Filename,
					m.MatchedPlayer,
					m.Confidence,
					m.MatchType,
					strings.Join(m.AlternativeMatches, ", "),
				})
			}
			tw.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "%d photos, %d players, %d high / %d medium confidence matches\n",
				snap.Stats.TotalPhotos, snap.Stats.TotalPlayers,
				snap.Stats.HighConfidenceMatches, snap.Stats.MediumConfidenceMatches)
			return nil
		},
	}
}
