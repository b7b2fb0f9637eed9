package cmd

import (
	"fmt"

	"github.com/rogersnm/taskmanager/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", dataDir, data)
		return nil
	},
}

var configModeCmd = &cobra.Command{
	Use:       "mode <remote|local>",
	Short:     "Choose between the remote API and the local store",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{config.ModeRemote, config.ModeLocal},
	RunE: func(cmd *cobra.Command, args []string) error {
		saved, err := config.Read(dataDir)
		if err != nil {
			return err
		}
		switch args[0] {
		case config.ModeRemote, config.ModeLocal:
		default:
			return fmt.Errorf("invalid mode %q: must be remote or local", args[0])
		}
		saved.Mode = args[0]
		if err := config.Save(dataDir, saved); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Mode: %s\n", saved.Mode)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configModeCmd)
	rootCmd.AddCommand(configCmd)
}
