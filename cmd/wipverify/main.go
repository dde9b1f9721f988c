// Command wipverify checks the unified workbook against the WBE and
// material lookups and writes the missing-keys report.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/cli"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/services"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/validation"
)

var (
	flags         cli.Flags
	unifiedPath   string
	wbePath       string
	materialsPath string
)

var rootCmd = &cobra.Command{
	Use:   "wipverify",
	Short: "Check WIP.xlsx against the WBE and material lookups",
	Long: `wipverify looks up every WBS and material code of the unified workbook
in the lookup tables and writes report_mancanti.xlsx listing the codes
that were not found. The command succeeds when codes are missing; they
are reported as warnings.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runVerify,
}

func init() {
	flags.Bind(rootCmd)
	fs := rootCmd.Flags()
	fs.StringVarP(&unifiedPath, "unified", "u", "", "unified workbook (WIP.xlsx)")
	fs.StringVar(&wbePath, "wbe", "", "WBE lookup workbook")
	fs.StringVar(&materialsPath, "materials", "", "material lookup workbook")
}

func runVerify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	req, err := flags.Request()
	if err != nil {
		return err
	}
	env, err := cli.Bootstrap(ctx, "wipverify", &flags)
	if err != nil {
		return err
	}

	if err := env.Validator.RequireInputs(map[string]string{
		"unified":   unifiedPath,
		"wbe":       wbePath,
		"materials": materialsPath,
	}, validation.KindSpreadsheet); err != nil {
		return err
	}

	var in services.VerifyInput
	if in.Unified, err = cli.ReadInput(unifiedPath); err != nil {
		return err
	}
	if in.WBELookup, err = cli.ReadInput(wbePath); err != nil {
		return err
	}
	if in.MaterialLookup, err = cli.ReadInput(materialsPath); err != nil {
		return err
	}

	res, err := env.Workflows.VerifyReferences(ctx, req, in)
	if err != nil {
		return err
	}
	return env.Finish(cmd.OutOrStdout(), res)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wipverify:", err)
		os.Exit(1)
	}
}
