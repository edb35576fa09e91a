// Command mapper is the terminal client for the photo-mapper backend. It
// loads the current photo/roster snapshot, applies assignment overrides,
// and either exports the confirmed mappings as CSV or submits the rename
// batch to Drive.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photomapper/internal/apiclient"
	"photomapper/internal/config"
	"photomapper/internal/reconcile"
)

var apiBase string

func main() {
	root := &cobra.Command{
		Use:           "mapper",
		Short:         "Reconcile team photos with roster players",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", config.Load().APIBaseURL, "base URL of the photo-mapper backend")

	root.AddCommand(newListCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newRenameCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// newSession builds a session against the configured backend and performs
// the initial load.
func newSession(cmd *cobra.Command) (*reconcile.Session, error) {
	session := reconcile.NewSession(apiclient.New(apiBase))
	if err := session.Reload(cmd.Context()); err != nil {
		return nil, err
	}
	return session, nil
}
