package main

import (
	"github.com/spf13/cobra"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/catalog"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		list := catalog.New(a.api, a.log.Named("list"))
		defer list.Close()
		return tui.Run(cmd.Context(), list, a.api, a.state, a.log)
	},
}
