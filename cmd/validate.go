package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/i18n"
	"github.com/egoavara/plugin-convert/internal/report"
	"github.com/egoavara/plugin-convert/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a plugin directory",
	Long: `Validate a Claude Code or OpenCode plugin directory.

Example:
  plugin-convert validate ./my-plugin
  plugin-convert validate ./out --format opencode`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var detectCmd = &cobra.Command{
	Use:   "detect <path>",
	Short: "Detect the format of a plugin directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

var validateFormat string

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "auto", "claude-code, opencode or auto")
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := core.ParseFormat(validateFormat)
	if err != nil {
		return err
	}

	res := validate.Validate(args[0], format)
	if wantJSON() {
		if err := report.JSON(os.Stdout, res); err != nil {
			return err
		}
	} else {
		report.Validation(os.Stdout, res)
	}

	if !res.Valid {
		return errUnsuccessful
	}
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	format := validate.DetectFormat(args[0])
	if wantJSON() {
		return report.JSON(os.Stdout, map[string]any{"path": args[0], "format": format})
	}
	if format == core.FormatUnknown {
		return fmt.Errorf("%s", i18n.T("UnknownFormat", map[string]any{"Path": args[0]}))
	}
	fmt.Println(i18n.T("DetectedFormat", map[string]any{"Path": args[0], "Format": format}))
	return nil
}
