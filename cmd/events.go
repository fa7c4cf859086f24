package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/report"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show how hook events map between the formats",
	Long: `Show the hook event mapping table.

Events marked with → only convert from Claude Code to OpenCode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if wantJSON() {
			return report.JSON(os.Stdout, core.HookEventMappings)
		}
		report.Events(os.Stdout, core.HookEventMappings)
		return nil
	},
}
