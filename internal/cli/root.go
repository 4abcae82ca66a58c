// Package cli provides the command-line interface for swatchbook.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatchbook/internal/config"
	"github.com/jmylchreest/swatchbook/internal/version"
)

// NewRootCmd builds the swatchbook command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "swatchbook",
		Short: "Print-ready CMYK recipes for screen colours",
		Long: `Swatchbook turns hex colours into CMYK print recipes.

Every colour gets a standard mathematical conversion and a smart recipe that
corrects for common print problems. Smart recipes come from a Google Gen AI
model when a credential is configured and from built-in rules otherwise.
Results are cached so each colour is only asked about once.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "enable verbose output")
	flags.BoolP("quiet", "q", false, "suppress non-error output")
	flags.StringP("config", "c", "", fmt.Sprintf("config file (default %s)", config.DefaultConfigPath()))
	flags.String("cache-backend", "", "recipe cache backend (file, badger, redis, memory)")
	flags.String("cache-dir", "", "recipe cache directory for the file and badger backends")
	flags.Bool("no-persist", false, "keep the recipe cache in memory only")
	flags.Bool("offline", false, "never call the remote model; use heuristic recipes")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRecipeCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
