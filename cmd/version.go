// =============================================================================
// PDF to XLSX Converter - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version, build information and the report types this build can parse.
//
// COMMAND USAGE:
//   converter version
//
// OUTPUT:
//   PDF to XLSX Converter
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.24.0
//   Reports:    all_deals, chart_of_accounts
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/deals"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/report"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/PDF-to-XLSX-conversion/cmd.Version=1.0.0' \
//     -X 'github.com/ginjaninja78/PDF-to-XLSX-conversion/cmd.BuildDate=2024-01-01'"

// Version is the application version.
// Set at build time using ldflags.
var Version = "1.0.0"

// BuildDate is the date the application was built.
// Set at build time using ldflags.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and supported report types.`,
	Run: func(cmd *cobra.Command, args []string) {
		registry := report.DefaultRegistry(deals.DefaultOptions(), nil)
		printVersion(cmd.OutOrStdout(), registry)
	},
}

// printVersion writes the version block, ending with the registered report ids.
func printVersion(w io.Writer, registry *report.Registry) {
	fmt.Fprintln(w, "PDF to XLSX Converter")
	fmt.Fprintf(w, "Version:    %s\n", Version)
	fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(w, "Go Version: %s\n", runtime.Version())
	fmt.Fprintf(w, "Reports:    %s\n", strings.Join(registry.IDs(), ", "))
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
