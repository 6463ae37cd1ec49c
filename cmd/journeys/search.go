package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"transit-journeys/internal/planner"
)

var (
	fromArg  string
	toArg    string
	dateArg  string
	timeArg  string
	jsonFlag bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one journey search and print the itineraries",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Keep stdout for itineraries
		log.SetOutput(os.Stderr)
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		a, err := newApp(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.planner.Search(ctx, planner.Request{From: fromArg, To: toArg, Date: dateArg, Time: timeArg})
		if err != nil {
			return err
		}
		if jsonFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		return writeResult(os.Stdout, res)
	},
}

func init() {
	searchCmd.Flags().StringVarP(&fromArg, "from", "f", "", "Origin address")
	searchCmd.Flags().StringVarP(&toArg, "to", "t", "", "Destination address")
	searchCmd.Flags().StringVarP(&dateArg, "date", "d", "", "Travel date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&timeArg, "time", "", "Earliest departure (HH:MM[:SS])")
	searchCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the result as JSON")
	for _, name := range []string{"from", "to", "date", "time"} {
		_ = searchCmd.MarkFlagRequired(name)
	}
}
