package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/detail"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite",
	Short: "Read or change the favorite",
}

var favoriteGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the favorite id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		id, ok := a.state.Current()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "You don't have any favorite")
			return nil
		}
		if !favoriteDetail {
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}

		f := detail.Open(id, a.api, a.state, a.log)
		defer f.Close()
		if err := f.Await(cmd.Context()); err != nil {
			return err
		}
		if err := f.Err(); err != nil {
			return fmt.Errorf("load favorite %s: %w", id, err)
		}
		printView(cmd.OutOrStdout(), f.View())
		return nil
	},
}

var favoriteDetail bool

func init() {
	favoriteGetCmd.Flags().BoolVar(&favoriteDetail, "detail", false, "print the favorite's detail instead of its id")
}

var favoritePressCmd = &cobra.Command{
	Use:   "press <id>",
	Short: "Press the favorite control of an entry",
	Long: `Behaves like the favorite button on the detail screen: sets the favorite
when none is set, asks before removing it when it is this entry, and asks
which one to keep when another entry is the favorite.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		f := detail.Open(args[0], a.api, a.state, a.log)
		defer f.Close()
		if err := f.Await(cmd.Context()); err != nil {
			return err
		}
		if err := f.Err(); err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}

		p := &detail.LinePrompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
		out, err := f.PressFavorite(cmd.Context(), p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var favoriteClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the favorite without asking",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		a.state.Remove(cmd.Context())
		return nil
	},
}
