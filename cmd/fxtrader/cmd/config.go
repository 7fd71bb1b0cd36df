package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfx/trader/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration as YAML: the built-in defaults
overlaid with the given config file, after validation.`,
	RunE: runConfig,
}

var configPath string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringVarP(&configPath, "config", "f", "", "path to YAML config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	out, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
