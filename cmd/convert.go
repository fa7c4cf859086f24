package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/engine"
	"github.com/egoavara/plugin-convert/internal/report"
)

var convertCmd = &cobra.Command{
	Use:   "convert <source>",
	Short: "Convert a plugin into the other format",
	Long: `Convert a plugin directory into the other format.

The direction is detected from the source unless --direction is given.

Example:
  plugin-convert convert ./my-plugin -o ./my-plugin-opencode
  plugin-convert convert ./oc-plugin -o ./cc-plugin -d opencode-to-claude
  plugin-convert convert ./my-plugin -o ./out --mode sync`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var syncCmd = &cobra.Command{
	Use:   "sync <source>",
	Short: "Re-convert a plugin when its source changed",
	Long: `Compare the source with the state recorded by the last conversion and
re-convert only when something changed.

Example:
  plugin-convert sync ./my-plugin -o ./my-plugin-opencode`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConversion(cmd, args[0], core.ModeSync)
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <source>",
	Short: "Preview a conversion without writing anything",
	Long: `Parse the source and list what a conversion would write.

Example:
  plugin-convert diff ./my-plugin -o ./my-plugin-opencode`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConversion(cmd, args[0], core.ModeDiff)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <source>",
	Short: "Show whether an output is up to date",
	Long: `Show which components changed since the output was last converted.

Example:
  plugin-convert status ./my-plugin -o ./my-plugin-opencode`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var (
	convertOutput    string
	convertDirection string
	convertMode      string
)

func init() {
	for _, c := range []*cobra.Command{convertCmd, syncCmd, diffCmd, statusCmd} {
		c.Flags().StringVarP(&convertOutput, "output", "o", "", "output directory")
		c.Flags().StringVarP(&convertDirection, "direction", "d", string(core.DirectionAuto), "claude-to-opencode, opencode-to-claude or auto")
		_ = c.MarkFlagRequired("output")
	}
	convertCmd.Flags().StringVarP(&convertMode, "mode", "m", string(core.ModeFull), "full, sync or diff")
}

func runConvert(cmd *cobra.Command, args []string) error {
	mode, err := core.ParseMode(convertMode)
	if err != nil {
		return err
	}
	return runConversion(cmd, args[0], mode)
}

func runConversion(cmd *cobra.Command, source string, mode core.Mode) error {
	direction, err := resolveDirection(cmd, convertDirection)
	if err != nil {
		return err
	}

	res := newEngine().Convert(cmd.Context(), engine.Request{
		Source:    source,
		Output:    convertOutput,
		Direction: direction,
		Mode:      mode,
	})

	if wantJSON() {
		if err := report.JSON(os.Stdout, res); err != nil {
			return err
		}
	} else {
		report.Result(os.Stdout, res)
	}

	if !res.Success {
		return errUnsuccessful
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	direction, err := resolveDirection(cmd, convertDirection)
	if err != nil {
		return err
	}

	st, err := newEngine().Status(args[0], convertOutput, direction)
	if err != nil {
		return err
	}

	if wantJSON() {
		return report.JSON(os.Stdout, st)
	}
	report.Status(os.Stdout, st)
	return nil
}
