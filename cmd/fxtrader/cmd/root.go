package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fxtrader",
	Short: "A multi-instrument FX trading decision engine",
	Long: `fxtrader ingests streaming quotes and a sentiment signal, fuses a
catalog of technical strategies into directional decisions, sizes positions
under strict daily risk budgets and executes through a paper or live broker.

It provides:
  - Paper trading against a built-in simulation broker
  - Live execution through the OANDA v20 REST API
  - A SQLite trade journal with balance and analysis history
  - An HTTP control surface with status, pause/resume, metrics and a
    websocket decision feed`,
}

// Execute runs the root command tree.
func Execute() error {
	return rootCmd.Execute()
}
