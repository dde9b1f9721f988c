// Command wiphistory folds today's unified workbook into the WIP history.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/cli"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/services"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/validation"
)

var (
	flags       cli.Flags
	unifiedPath string
	wbePath     string
	currentPath string
	olderPath   string
)

var rootCmd = &cobra.Command{
	Use:   "wiphistory",
	Short: "Append today's WIP snapshot to storico_dati.xlsx",
	Long: `wiphistory aggregates the unified workbook by area, merges the
snapshot into the current history (and an optional older history) and
writes storico_dati.xlsx and storico_dati.csv. Without --current the
history already in the output directory is used, when there is one.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHistory,
}

func init() {
	flags.Bind(rootCmd)
	fs := rootCmd.Flags()
	fs.StringVarP(&unifiedPath, "unified", "u", "", "unified workbook (WIP.xlsx)")
	fs.StringVar(&wbePath, "wbe", "", "WBE lookup workbook carrying the area mapping")
	fs.StringVar(&currentPath, "current", "", "current history workbook")
	fs.StringVar(&olderPath, "older", "", "older history workbook merged underneath the current one")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	req, err := flags.Request()
	if err != nil {
		return err
	}
	env, err := cli.Bootstrap(ctx, "wiphistory", &flags)
	if err != nil {
		return err
	}

	required := map[string]string{"unified": unifiedPath, "wbe": wbePath}
	if currentPath == "" {
		if existing := filepath.Join(env.OutDir, config.HistoryWorkbookName); config.FileExists(existing) {
			currentPath = existing
			env.Logger.Info("Using history from output directory", slog.String("file", existing))
		}
	}
	if currentPath != "" {
		required["current"] = currentPath
	}
	if olderPath != "" {
		required["older"] = olderPath
	}
	if err := env.Validator.RequireInputs(required, validation.KindSpreadsheet); err != nil {
		return err
	}

	var in services.HistoryInput
	if in.Unified, err = cli.ReadInput(unifiedPath); err != nil {
		return err
	}
	if in.WBELookup, err = cli.ReadInput(wbePath); err != nil {
		return err
	}
	if in.Current, err = cli.ReadInput(currentPath); err != nil {
		return err
	}
	if in.Older, err = cli.ReadInput(olderPath); err != nil {
		return err
	}

	res, err := env.Workflows.UpdateHistory(ctx, req, in)
	if err != nil {
		return err
	}
	return env.Finish(cmd.OutOrStdout(), res)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wiphistory:", err)
		os.Exit(1)
	}
}
