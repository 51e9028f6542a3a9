package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chaintest/harness/cmd/exitcodes"
	"github.com/chaintest/harness/contracts"
	"github.com/chaintest/harness/harness"
	"github.com/chaintest/harness/harness/config"
	"github.com/chaintest/harness/logging"
	"github.com/chaintest/harness/logging/colors"
	"github.com/chaintest/harness/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runCmd represents the command provider for executing test suites.
var runCmd = &cobra.Command{
	Use:               "run",
	Short:             "Runs the registered test suites",
	Long:              `Runs the registered test suites`,
	Args:              cmdValidateRunArgs,
	ValidArgsFunction: cmdValidRunArgs,
	RunE:              cmdRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the run command
	addRunFlags()

	// Add the run command and its associated flags to the root command
	rootCmd.AddCommand(runCmd)
}

// cmdValidRunArgs will return which flags and sub-commands are valid for dynamic completion for the run command
func cmdValidRunArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateRunArgs makes sure that there are no positional arguments provided to the run command
func cmdValidateRunArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("run does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the run command", err)
		return err
	}
	return nil
}

// cmdRun executes the CLI run command: it resolves the project configuration from --config, the default
// harness.json, or built-in defaults, then executes the registered suites and exits non-zero if any case failed.
func cmdRun(cmd *cobra.Command, args []string) error {
	var projectConfig *config.ProjectConfig

	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		cmdLogger.Error("Failed to run the run command", err)
		return err
	}

	// If --config was not used, look for the default config file in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the run command", err)
			return err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	if existenceError == nil {
		// The config file was found, so read it.
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err = config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			cmdLogger.Error("Failed to run the run command", err)
			return err
		}
	} else if configFlagUsed {
		// If the --config flag was used, and we couldn't find the file, we'll throw an error
		cmdLogger.Error("Failed to run the run command", existenceError)
		return existenceError
	} else {
		// No config file was found, so use the default project config.
		cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration instead", configPath))
		projectConfig = config.GetDefaultProjectConfig()
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithRunFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the run command", err)
		return err
	}

	// Set up the global logger per the project configuration.
	err = setupGlobalLogger(projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the run command", err)
		return err
	}

	// Create the runner over our registered suites.
	runner, err := harness.NewRunner(*projectConfig, contracts.TutorialSuite())
	if err != nil {
		cmdLogger.Error("Failed to create the test runner", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeRunnerError)
	}

	// Report progress as individual cases conclude.
	caseCount := 0
	finished := 0
	runner.Events.RunStarting.Subscribe(func(event harness.RunStartingEvent) error {
		caseCount = event.CaseCount
		return nil
	})
	runner.Events.TestCaseFinished.Subscribe(func(event harness.TestCaseFinishedEvent) error {
		finished++
		cmdLogger.Info("[", finished, "/", caseCount, "] ", colors.Bold, event.Result.CaseName, colors.Reset, ": ", string(event.Result.Status))
		return nil
	})

	results, err := runner.Run()
	if err != nil {
		cmdLogger.Error("Failed to run the test suites", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeRunnerError)
	}

	// Surface test failures through the exit code.
	failed := 0
	for _, result := range results {
		if !result.Passed() {
			failed++
		}
	}
	cmdLogger.Info("Run complete: ", len(results)-failed, " of ", len(results), " case(s) passed")
	if failed > 0 {
		return exitcodes.NewErrorWithExitCode(fmt.Errorf("%d test case(s) failed", failed), exitcodes.ExitCodeTestFailed)
	}
	return nil
}

// setupGlobalLogger configures the global logger per the project's logging configuration, optionally attaching a
// structured log file writer.
func setupGlobalLogger(projectConfig *config.ProjectConfig) error {
	logging.GlobalLogger = logging.NewLogger(projectConfig.Logging.Level)

	// Keep the command logger's verbosity in line with the configured level, so --verbosity also affects the
	// command's own output.
	cmdLogger.SetLevel(projectConfig.Logging.Level)
	if projectConfig.Logging.EnableConsoleLogging {
		logging.GlobalLogger.EnableConsoleLogging()
	}
	if projectConfig.Logging.LogDirectory != "" {
		file, err := utils.CreateFile(projectConfig.Logging.LogDirectory, "harness.log")
		if err != nil {
			return err
		}
		logging.GlobalLogger.AddWriter(file, logging.STRUCTURED)
	}
	return nil
}
