// Package cli implements the covid-cli terminal report.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rizwanaperveen/covid/pkg/logger"
)

// SetupLogging initializes the logger on stderr so stdout stays a clean report.
func SetupLogging(verbose bool) error {
	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for the CLI.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `COVID-19 Tracker CLI
====================

Prints current totals and the recent daily new cases for one country,
using the disease.sh API.

Usage:
  covid-cli [options]

Options:
  -country string
        Country to report on (default "India")
  -days int
        Number of trailing days of history (default 30)
  -url string
        Base URL of the disease.sh API (default "https://disease.sh")
  -timeout duration
        Per-request timeout, 0 for none (default 30s)
  -list
        Print the available countries and exit
  -stub
        Serve embedded sample data instead of calling the API
  -verbose
        Enable debug logging on stderr
  -help
        Show this help message

Examples:
  # Report on the default country
  covid-cli

  # Two weeks of history for Brazil
  covid-cli -country Brazil -days 14

  # Offline, against the embedded sample data
  covid-cli -stub -country USA
`)
}
