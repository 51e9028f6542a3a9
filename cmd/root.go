package cmd

import (
	"github.com/chaintest/harness/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootCmd represents the root CLI command object which all other commands are attached to.
var rootCmd = &cobra.Command{
	Use:   "harness",
	Short: "A contract test harness with fuzzing and counterexample shrinking",
	Long:  "harness runs contract test suites sequentially, fuzzing parameterized cases and shrinking failures into minimal counterexamples",
}

// cmdLogger is the logger used by CLI commands.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel)

func init() {
	// CLI output goes to the console regardless of the project's logging configuration.
	cmdLogger.EnableConsoleLogging()
}

// Execute provides an exportable function to invoke the CLI.
// Returns an error if one was encountered.
func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}
