package cmd

import (
	"fmt"

	"github.com/chaintest/harness/harness/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// addRunFlags adds the various flags for the run command
func addRunFlags() {
	// Get the default project config to document flag defaults.
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	runCmd.Flags().SortFlags = false

	// Config file
	runCmd.Flags().String("config", "", "path to config file")

	// Case name filter
	runCmd.Flags().String("match-case", "",
		"only run test cases whose name contains this substring")

	// Fuzz run count
	runCmd.Flags().Int("fuzz-runs", 0,
		fmt.Sprintf("number of randomized inputs per fuzzed case (unless a config file is provided, default is %d)", defaultConfig.Runner.FuzzRuns))

	// Shrink attempt budget
	runCmd.Flags().Int("shrink-attempts", 0,
		fmt.Sprintf("maximum shrink candidates per failing input (unless a config file is provided, default is %d)", defaultConfig.Runner.ShrinkAttempts))

	// Timeout
	runCmd.Flags().Int("timeout", 0,
		fmt.Sprintf("number of seconds to run the suites for (unless a config file is provided, default is %d). 0 means that timeout is not enforced", defaultConfig.Runner.Timeout))

	// Corpus directory
	runCmd.Flags().String("corpus-dir", "",
		fmt.Sprintf("directory path for persisted counterexamples (unless a config file is provided, default is %q)", defaultConfig.Runner.CorpusDirectory))

	// Seed
	runCmd.Flags().Int64("seed", 0,
		"seed for all randomness in the run. 0 selects a time-based seed")

	// Senders
	runCmd.Flags().StringSlice("senders", []string{},
		"account address(es) available to tests as pre-funded callers")

	// Deployer address
	runCmd.Flags().String("deployer", "",
		"account address used to deploy contracts")

	// Verbosity
	runCmd.Flags().Int("verbosity", 0,
		"log verbosity: 0 for info, 1 for debug, 2 for trace")
}

// updateProjectConfigWithRunFlags will update the given projectConfig with any CLI arguments that were provided to
// the run command
func updateProjectConfigWithRunFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the case name filter
	if cmd.Flags().Changed("match-case") {
		projectConfig.Runner.MatchCase, err = cmd.Flags().GetString("match-case")
		if err != nil {
			return err
		}
	}

	// Update the fuzz run count
	if cmd.Flags().Changed("fuzz-runs") {
		projectConfig.Runner.FuzzRuns, err = cmd.Flags().GetInt("fuzz-runs")
		if err != nil {
			return err
		}
	}

	// Update the shrink attempt budget
	if cmd.Flags().Changed("shrink-attempts") {
		projectConfig.Runner.ShrinkAttempts, err = cmd.Flags().GetInt("shrink-attempts")
		if err != nil {
			return err
		}
	}

	// Update the timeout
	if cmd.Flags().Changed("timeout") {
		projectConfig.Runner.Timeout, err = cmd.Flags().GetInt("timeout")
		if err != nil {
			return err
		}
	}

	// Update the corpus directory
	if cmd.Flags().Changed("corpus-dir") {
		projectConfig.Runner.CorpusDirectory, err = cmd.Flags().GetString("corpus-dir")
		if err != nil {
			return err
		}
	}

	// Update the seed
	if cmd.Flags().Changed("seed") {
		projectConfig.Runner.Seed, err = cmd.Flags().GetInt64("seed")
		if err != nil {
			return err
		}
	}

	// Update the sender addresses
	if cmd.Flags().Changed("senders") {
		projectConfig.Runner.SenderAddresses, err = cmd.Flags().GetStringSlice("senders")
		if err != nil {
			return err
		}
	}

	// Update the deployer address
	if cmd.Flags().Changed("deployer") {
		projectConfig.Runner.DeployerAddress, err = cmd.Flags().GetString("deployer")
		if err != nil {
			return err
		}
	}

	// Update the logging level
	if cmd.Flags().Changed("verbosity") {
		verbosity, err := cmd.Flags().GetInt("verbosity")
		if err != nil {
			return err
		}
		switch {
		case verbosity <= 0:
			projectConfig.Logging.Level = zerolog.InfoLevel
		case verbosity == 1:
			projectConfig.Logging.Level = zerolog.DebugLevel
		default:
			projectConfig.Logging.Level = zerolog.TraceLevel
		}
	}

	return nil
}
