package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pisim",
	Short: "Pi-cascade transmission line transient simulator",
	Long: `Build the state-space model of a transmission line represented by a
cascade of pi sections with frequency dependent series rungs, and integrate
its transient response to a sending-end voltage.

Examples:
  pisim run line.cir                          # Simulate a deck
  pisim run line.yaml --csv out.csv           # Simulate a YAML scenario, save CSV
  pisim matrix line.cir --dense               # Show the assembled A and B
  pisim op line.cir                           # DC steady state`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging of the integrator")
}
