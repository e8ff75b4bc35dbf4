package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salonensamuli/pybacktestchain/backtest"
	"github.com/salonensamuli/pybacktestchain/config"
)

var runConfigPath string

var cmdRun = &cobra.Command{
	Use:   "run",
	Short: "Execute a configured backtest",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return err
		}

		driverCfg, closers, err := buildDriverConfig(cfg)
		if err != nil {
			return err
		}
		defer closeAll(closers)

		driver, err := backtest.New(driverCfg)
		if err != nil {
			return err
		}

		res, err := driver.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("run %s: %w", driver.State(), err)
		}

		fmt.Printf("Run %s completed.\n", res.RunID)
		fmt.Printf("  period       %s .. %s\n", res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"))
		fmt.Printf("  initial cash %.2f\n", res.InitialCash)
		fmt.Printf("  final value  %.2f\n", res.FinalValue)
		fmt.Printf("  rebalances   %d\n", res.Rebalances)
		fmt.Printf("  audit chain  %s (%d blocks)\n", res.ChainName, res.Blocks)
		return nil
	},
}

func init() {
	cmdRun.Flags().StringVarP(&runConfigPath, "config", "c", "backtest.yaml", "path to run configuration (YAML or JSON)")
}
