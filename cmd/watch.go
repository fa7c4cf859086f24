package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/engine"
	"github.com/egoavara/plugin-convert/internal/i18n"
	"github.com/egoavara/plugin-convert/internal/report"
	"github.com/egoavara/plugin-convert/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <source>",
	Short: "Re-sync the output whenever the source changes",
	Long: `Convert the source once, then watch it and run a sync after every
burst of changes. Stop with Ctrl+C.

Example:
  plugin-convert watch ./my-plugin -o ./my-plugin-opencode`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchOutput    string
	watchDirection string
	watchExclude   []string
)

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "output directory")
	watchCmd.Flags().StringVarP(&watchDirection, "direction", "d", string(core.DirectionAuto), "claude-to-opencode, opencode-to-claude or auto")
	watchCmd.Flags().StringSliceVar(&watchExclude, "exclude", nil, "glob patterns to ignore")
	_ = watchCmd.MarkFlagRequired("output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	source := args[0]
	direction, err := resolveDirection(cmd, watchDirection)
	if err != nil {
		return err
	}

	excludes := append([]string{}, watchExclude...)
	// an output nested in the source would retrigger itself
	if rel, err := filepath.Rel(source, watchOutput); err == nil && filepath.IsLocal(rel) {
		excludes = append(excludes, filepath.ToSlash(rel), filepath.ToSlash(rel)+"/**")
	}

	logger := newLogger()
	w, err := watch.New(watch.Config{Root: source, ExcludePatterns: excludes}, logger)
	if err != nil {
		return err
	}

	eng := newEngine()
	run := func(ctx context.Context) {
		res := eng.Convert(ctx, engine.Request{
			Source:    source,
			Output:    watchOutput,
			Direction: direction,
			Mode:      core.ModeSync,
		})
		if wantJSON() {
			_ = report.JSON(os.Stdout, res)
			return
		}
		report.Result(os.Stdout, res)
	}

	run(cmd.Context())
	fmt.Println(i18n.T("WatchStarted", map[string]any{"Source": source, "Output": watchOutput}))

	return w.Run(cmd.Context(), func(ctx context.Context, changed []string) {
		fmt.Println(i18n.T("WatchChanged", map[string]any{
			"Count": len(changed),
			"Files": strings.Join(changed, ", "),
		}, len(changed)))
		run(ctx)
	})
}
