package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/egoavara/plugin-convert/internal/config"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/engine"
	"github.com/egoavara/plugin-convert/internal/i18n"
)

// errUnsuccessful makes the process exit with 1 after the report was printed
var errUnsuccessful = errors.New("conversion finished with errors")

var (
	verbose    bool
	jsonOutput bool
	cfgFile    string

	rootCmd = &cobra.Command{
		Use:           "plugin-convert",
		Short:         "Convert plugins between Claude Code and OpenCode",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `plugin-convert converts plugin definitions between the Claude Code
plugin layout and the OpenCode plugin layout.

Hooks, MCP servers, skills, commands and agents are converted rule by rule.
Anything that cannot be expressed in the target format is reported as a
warning instead of being dropped silently.

Commands:
  convert      Convert a plugin (full rewrite of the output)
  sync         Re-convert only when the source changed since the last run
  diff         Preview what a conversion would write
  status       Show whether an output is up to date with its source
  validate     Validate a plugin directory
  detect       Detect the format of a plugin directory
  events       Show the hook event mapping table
  watch        Re-sync whenever the source changes
  marketplace  Convert a whole marketplace directory
  config       Manage configuration`,
	}
)

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errUnsuccessful) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/plugin-convert/config.json)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(marketplaceCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	config.SetConfigPath(cfgFile)
	if err := config.Reload(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", i18n.T("ConfigLoadFailed", map[string]any{"Path": cfgFile}), err)
		return
	}
	i18n.SetLocale(i18n.Resolve(config.GetLocale()))
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newEngine() *engine.Engine {
	return engine.New(
		engine.WithLogger(newLogger()),
		engine.WithAgentDefaults(config.Get().AgentDefaults()),
	)
}

func wantJSON() bool {
	return jsonOutput || config.Get().Output.JSON
}

// resolveDirection reads --direction, falling back to the configured default
func resolveDirection(cmd *cobra.Command, value string) (core.Direction, error) {
	if !cmd.Flags().Changed("direction") {
		return config.Get().DefaultDirection, nil
	}
	return core.ParseDirection(value)
}
