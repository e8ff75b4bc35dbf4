package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salonensamuli/pybacktestchain/config"
)

var (
	verifyConfigPath string
	removeConfigPath string
)

var cmdVerify = &cobra.Command{
	Use:   "verify NAME",
	Short: "Load a persisted audit chain and check its integrity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(verifyConfigPath)
		if err != nil {
			return err
		}
		store, closer, err := buildStore(cfg.Chain)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		c, err := store.Load(args[0])
		if err != nil {
			return err
		}
		if !c.IsValid() {
			return fmt.Errorf("chain %q is NOT valid", args[0])
		}
		fmt.Printf("chain %q is valid (%d blocks)\n", args[0], c.Len())
		return nil
	},
}

var cmdRemove = &cobra.Command{
	Use:   "remove NAME",
	Short: "Delete a persisted audit chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(removeConfigPath)
		if err != nil {
			return err
		}
		store, closer, err := buildStore(cfg.Chain)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		if err := store.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("chain %q removed\n", args[0])
		return nil
	},
}

var cmdInit = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "backtest.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.Default().SaveToFile(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	cmdVerify.Flags().StringVarP(&verifyConfigPath, "config", "c", "backtest.yaml", "path to run configuration (YAML or JSON)")
	cmdRemove.Flags().StringVarP(&removeConfigPath, "config", "c", "backtest.yaml", "path to run configuration (YAML or JSON)")
}
