// Command wipmerge consolidates a directory of WIP text exports into the
// unified workbook.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/cli"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/dataprocessing"
)

var (
	flags    cli.Flags
	inputDir string
)

var rootCmd = &cobra.Command{
	Use:   "wipmerge",
	Short: "Merge the WIP text exports into WIP.xlsx",
	Long: `wipmerge reads every *.txt export in the input directory (sorted by
name), consolidates their records and writes the unified workbook to the
output directory. The batch must contain exactly workflow.expected_exports
files.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMerge,
}

func init() {
	flags.Bind(rootCmd)
	rootCmd.Flags().StringVarP(&inputDir, "in", "i", "", "directory holding the text exports (default: data/uploads next to the executable)")
}

func runMerge(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	req, err := flags.Request()
	if err != nil {
		return err
	}
	env, err := cli.Bootstrap(ctx, "wipmerge", &flags)
	if err != nil {
		return err
	}

	dir := inputDir
	if dir == "" {
		dir = env.Paths.UploadsDir
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return fmt.Errorf("resolve input directory: %w", err)
	}
	if err := env.Validator.ValidateInputDirectory(dir); err != nil {
		return err
	}

	count, err := env.Validator.CountExports(dir)
	if err != nil {
		return err
	}
	if want := env.Config.Workflow.ExpectedExports; want > 0 && count != want {
		return fmt.Errorf("%s holds %d exports, expected %d", dir, count, want)
	}

	found, err := env.Discovery.FindExports(dir)
	if err != nil {
		return err
	}
	exports := make([]dataprocessing.Export, 0, len(found))
	for _, f := range found {
		in, err := cli.ReadInput(f.Path)
		if err != nil {
			return err
		}
		exports = append(exports, dataprocessing.Export{Name: in.Name, Data: in.Data})
	}
	env.Logger.Info("Merging exports",
		slog.String("directory", dir),
		slog.Int("files", len(exports)))

	res, err := env.Workflows.MergeExports(ctx, req, exports)
	if err != nil {
		return err
	}
	return env.Finish(cmd.OutOrStdout(), res)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wipmerge:", err)
		os.Exit(1)
	}
}
