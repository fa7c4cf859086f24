package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/egoavara/plugin-convert/internal/config"
	"github.com/egoavara/plugin-convert/internal/i18n"
	"github.com/egoavara/plugin-convert/internal/report"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage plugin-convert configuration",
	Long: `Manage plugin-convert configuration settings.

Values can also be overridden with PLUGIN_CONVERT_* environment variables,
e.g. PLUGIN_CONVERT_PARALLEL=8.

Example:
  plugin-convert config show
  plugin-convert config set parallel 8`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Available keys:
  locale            - Language setting
                      Values: auto, en-US, ko-KR, etc.
  defaultDirection  - Direction used when --direction is not given
                      Values: auto, claude-to-opencode, opencode-to-claude
  parallel          - Plugins converted at once by marketplace commands
  agents.provider   - Provider given to converted agents that have none
  agents.model      - Model given to converted agents that have none
  output.json       - Print results as JSON by default (true/false)

Example:
  plugin-convert config set locale ko-KR
  plugin-convert config set agents.model claude-sonnet-4-20250514`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.ConfigPath())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if wantJSON() {
		return report.JSON(os.Stdout, cfg)
	}

	fmt.Println(i18n.T("ConfigHeader", map[string]any{"Path": config.ConfigPath()}))
	fmt.Println("----------------------------------------")
	for _, key := range config.Keys() {
		value, err := cfg.Value(key)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %s\n", key, value)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg := *config.Get()
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(&cfg); err != nil {
		return err
	}
	if err := config.Reload(); err != nil {
		return err
	}

	fmt.Println(i18n.T("ConfigSaved", map[string]any{"Key": key, "Value": value}))
	return nil
}
