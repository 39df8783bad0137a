package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/detail"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one entry with its species description",
	Args:  cobra.ExactArgs(1),
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
			return err
		}
		printView(cmd.OutOrStdout(), f.View())
		return nil
	},
}

func printView(w io.Writer, v detail.View) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(v.ColorHex))
	name := v.DisplayName
	if v.IsFavorite {
		name += " ★"
	}
	fmt.Fprintln(w, title.Render(fmt.Sprintf("#%s %s", v.ID, name)))
	if v.Entry != nil {
		fmt.Fprintf(w, "Types:  %s\n", strings.Join(v.Entry.Types, ", "))
	}
	fmt.Fprintf(w, "Height: %s\nWeight: %s\n", v.Height, v.Weight)
	if v.Species != nil && v.Species.Description != "" {
		fmt.Fprintf(w, "\n%s\n", v.Species.Description)
	}
	fmt.Fprintf(w, "\nImage:  %s\n", v.ImageURL)
	if v.Existing != nil {
		fmt.Fprintf(w, "Current favorite: %s (#%s)\n", v.Existing.Name, v.Existing.ID)
	}
}
