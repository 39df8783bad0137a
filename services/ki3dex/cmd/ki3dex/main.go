package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ki3mon/ki3dex/internal/platform/run"
)

var rootCmd = &cobra.Command{
	Use:   "ki3dex",
	Short: "Browse the Pokémon catalog and keep a single favorite",
	Long: `ki3dex browses the PokéAPI catalog, keeps one favorite across restarts,
places session map markers bound to the favorite and computes the camera
overlay for it.

Configuration is read from the environment (POKEAPI_BASE_URL, FAVORITE_BACKEND,
REDIS_URL, DATABASE_URL, NATS_URL, ...).`,
	SilenceUsage: true,
}

var envFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read; missing is fine")
	rootCmd.AddCommand(serveCmd, browseCmd, showCmd, favoriteCmd)
	favoriteCmd.AddCommand(favoriteGetCmd, favoritePressCmd, favoriteClearCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		run.Exit(1)
	}
}
