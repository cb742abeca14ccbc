// =============================================================================
// PDF to XLSX Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the PDF to XLSX Converter CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   converter convert       - Convert every report in the input directory
//   converter reports       - List the supported report types
//   converter inspect       - Show what a converted workbook contains
//   converter version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Report parsing, conversion and output
//   - pkg/           : Shared file utilities
//   - configs/       : Report profiles (YAML)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
