// Command backtest runs configured portfolio backtests and manages their
// persisted audit chains.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a price history against a rebalancing policy",
	Long: `backtest replays historical prices for a universe of tickers,
re-executes a periodic rebalancing policy over them, and records the run
in a hash-linked audit chain that can be verified later.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmdRun)
	rootCmd.AddCommand(cmdVerify)
	rootCmd.AddCommand(cmdRemove)
	rootCmd.AddCommand(cmdInit)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
