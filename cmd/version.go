package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/egoavara/plugin-convert/internal/report"
	"github.com/egoavara/plugin-convert/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if wantJSON() {
			return report.JSON(os.Stdout, map[string]string{
				"version":   version.Version,
				"commit":    version.GitCommit,
				"buildDate": version.BuildDate,
				"go":        runtime.Version(),
			})
		}
		fmt.Println(version.Info())
		if version.BuildDate != "" {
			fmt.Printf("  built: %s\n", version.BuildDate)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Info() + "\n")
}
