package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"transit-journeys/internal/logging"
)

var (
	debugFlag   bool
	workersFlag int
	nearestFlag int
)

var rootCmd = &cobra.Command{
	Use:   "journeys",
	Short: "Find direct and one-transfer bus journeys between two places",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitLogging()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "v", false, "Enable debug logs")
	rootCmd.PersistentFlags().IntVarP(&workersFlag, "workers", "w", 0, "Search workers (default SEARCH_WORKERS)")
	rootCmd.PersistentFlags().IntVarP(&nearestFlag, "nearest", "k", 0, "Stops considered around each endpoint (default NEAREST_STOPS)")
	rootCmd.AddCommand(searchCmd, serveCmd)
}
