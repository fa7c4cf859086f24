package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/egoavara/plugin-convert/internal/config"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/git"
	"github.com/egoavara/plugin-convert/internal/i18n"
	"github.com/egoavara/plugin-convert/internal/marketplace"
	"github.com/egoavara/plugin-convert/internal/report"
)

var marketplaceCmd = &cobra.Command{
	Use:     "marketplace",
	Aliases: []string{"mp"},
	Short:   "Convert plugin marketplaces",
	Long: `Convert every plugin of a marketplace directory.

Commands:
  convert  Convert all plugins of a marketplace
  sync     Re-convert plugins whose source changed
  validate Validate every plugin in a directory
  init-ci  Write GitHub Actions workflows that keep a converted marketplace in sync`,
}

var marketplaceConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert all plugins of a marketplace",
	Long: `Convert all plugins of a marketplace directory or git repository.

Example:
  plugin-convert marketplace convert --source ./plugins --target ./dist
  plugin-convert mp convert --source https://github.com/org/plugins --target ./dist --exclude 'internal-*'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMarketplace(cmd, core.ModeFull)
	},
}

var marketplaceSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-convert plugins whose source changed",
	Long: `Run a sync over every plugin of a marketplace. Unchanged plugins are left alone.

Example:
  plugin-convert marketplace sync --source ./plugins --target ./dist --direction claude-to-opencode`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMarketplace(cmd, core.ModeSync)
	},
}

var marketplaceValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every plugin in a directory",
	Long: `Validate every plugin directory directly under --dir.

Example:
  plugin-convert marketplace validate --dir ./dist --format opencode`,
	Args: cobra.NoArgs,
	RunE: runMarketplaceValidate,
}

var marketplaceInitCICmd = &cobra.Command{
	Use:   "init-ci",
	Short: "Write GitHub Actions workflows for a converted marketplace",
	Long: `Write sync and validate workflows under .github/workflows of --target.

Example:
  plugin-convert marketplace init-ci --target . --direction claude-to-opencode`,
	Args: cobra.NoArgs,
	RunE: runMarketplaceInitCI,
}

var (
	mpSource          string
	mpTarget          string
	mpDirection       string
	mpInclude         []string
	mpExclude         []string
	mpParallel        int
	mpContinueOnError bool
	mpNoDocs          bool
	mpNoValidate      bool
	mpDir             string
	mpFormat          string
)

// batchFlags are shared by marketplace convert and sync
func batchFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("batch", pflag.ContinueOnError)
	fs.StringVar(&mpSource, "source", "", "source marketplace directory or git URL")
	fs.StringVar(&mpTarget, "target", "", "target directory")
	fs.StringVarP(&mpDirection, "direction", "d", string(core.DirectionAuto), "claude-to-opencode, opencode-to-claude or auto")
	fs.StringSliceVar(&mpInclude, "include", nil, "only convert plugins matching these globs")
	fs.StringSliceVar(&mpExclude, "exclude", nil, "skip plugins matching these globs")
	fs.IntVarP(&mpParallel, "parallel", "p", 0, "plugins converted at once (default from config)")
	fs.BoolVar(&mpContinueOnError, "continue-on-error", false, "keep converting after a plugin fails")
	fs.BoolVar(&mpNoDocs, "no-docs", false, "skip README.md and CONVERSION_NOTES.md")
	fs.BoolVar(&mpNoValidate, "no-validate", false, "skip validating converted plugins")
	return fs
}

func init() {
	for _, c := range []*cobra.Command{marketplaceConvertCmd, marketplaceSyncCmd} {
		c.Flags().AddFlagSet(batchFlags())
		_ = c.MarkFlagRequired("source")
		_ = c.MarkFlagRequired("target")
	}

	marketplaceValidateCmd.Flags().StringVar(&mpDir, "dir", "", "directory holding plugin directories")
	marketplaceValidateCmd.Flags().StringVarP(&mpFormat, "format", "f", "auto", "claude-code, opencode or auto")
	_ = marketplaceValidateCmd.MarkFlagRequired("dir")

	marketplaceInitCICmd.Flags().StringVar(&mpTarget, "target", ".", "repository root of the converted marketplace")
	marketplaceInitCICmd.Flags().StringVarP(&mpDirection, "direction", "d", "", "claude-to-opencode or opencode-to-claude")

	marketplaceCmd.AddCommand(marketplaceConvertCmd)
	marketplaceCmd.AddCommand(marketplaceSyncCmd)
	marketplaceCmd.AddCommand(marketplaceValidateCmd)
	marketplaceCmd.AddCommand(marketplaceInitCICmd)
}

func runMarketplace(cmd *cobra.Command, mode core.Mode) error {
	direction, err := resolveDirection(cmd, mpDirection)
	if err != nil {
		return err
	}
	parallel := mpParallel
	if parallel <= 0 {
		parallel = config.Get().Parallel
	}

	logger := newLogger()
	conv := marketplace.NewConverter(newEngine(), git.NewClient(), logger)

	if git.IsRemote(mpSource) {
		fmt.Fprintln(os.Stderr, i18n.T("Cloning", map[string]any{"URL": mpSource}))
	}
	rep, err := conv.Convert(cmd.Context(), marketplace.Config{
		Source:          mpSource,
		Target:          mpTarget,
		Direction:       direction,
		Mode:            mode,
		Include:         mpInclude,
		Exclude:         mpExclude,
		Parallel:        parallel,
		ContinueOnError: mpContinueOnError,
		GenerateDocs:    !mpNoDocs,
		Validate:        !mpNoValidate,
	})
	if err != nil {
		var authErr *git.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("%s", i18n.T("GitAuthFailed", map[string]any{"URL": authErr.URL}))
		}
		return err
	}

	if wantJSON() {
		if err := report.JSON(os.Stdout, rep); err != nil {
			return err
		}
	} else {
		if rep.TotalPlugins == 0 {
			fmt.Println(i18n.T("NoPluginsFound", map[string]any{"Path": mpSource}))
		}
		report.Batch(os.Stdout, rep)
	}

	if rep.Failed > 0 {
		return errUnsuccessful
	}
	return nil
}

func runMarketplaceValidate(cmd *cobra.Command, args []string) error {
	format, err := core.ParseFormat(mpFormat)
	if err != nil {
		return err
	}

	results, err := marketplace.ValidateDir(mpDir, format)
	if err != nil {
		return err
	}

	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}

	if wantJSON() {
		if err := report.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			report.Validation(os.Stdout, r)
		}
		fmt.Println(i18n.T("ValidationSummary", map[string]any{"Valid": valid, "Total": len(results)}))
	}

	if valid < len(results) {
		return errUnsuccessful
	}
	return nil
}

func runMarketplaceInitCI(cmd *cobra.Command, args []string) error {
	direction, err := core.ParseDirection(mpDirection)
	if err != nil {
		return err
	}
	paths, err := marketplace.GenerateCIWorkflows(mpTarget, direction)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(i18n.T("WorkflowWritten", map[string]any{"Path": p}))
	}
	return nil
}
