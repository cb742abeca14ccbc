// =============================================================================
// PDF to XLSX Converter - Reports Command
// =============================================================================
//
// This file defines the 'reports' command, which lists the report types the
// converter understands.
//
// COMMAND USAGE:
//   converter reports [--columns]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/report"
)

// showColumns also prints the export schema of every report.
var showColumns bool

// reportsCmd represents the 'reports' command.
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the supported report types",
	Long: `List the report types that can be passed to --report or used as the
report_type of a profile, with the columns each one exports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := report.DefaultRegistry(mainConfig.Heuristics.DealOptions(), mainConfig.PageBanners)
		return listReports(cmd.OutOrStdout(), registry, showColumns)
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.Flags().BoolVar(&showColumns, "columns", false, "Also list the columns of each report")
}

// listReports prints one line per source, and optionally its columns.
func listReports(w io.Writer, registry *report.Registry, columns bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSHEET\tCOLUMNS\tFALLBACK")
	for _, src := range registry.Sources() {
		_, fallible := src.(report.Fallible)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\n",
			src.ID(), src.Label(), src.SheetName(), len(src.Columns()), fallible)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !columns {
		return nil
	}
	for _, src := range registry.Sources() {
		fmt.Fprintf(w, "\n%s:\n", src.Label())
		for i, col := range src.Columns() {
			fmt.Fprintf(w, "  %2d. %-28s %s\n", i+1, col.Name, col.Kind)
		}
	}
	return nil
}
