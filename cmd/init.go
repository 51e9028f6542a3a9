package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chaintest/harness/harness/config"
	"github.com/chaintest/harness/logging/colors"
	"github.com/chaintest/harness/utils"
	"github.com/spf13/cobra"
)

// initCmd represents the command provider for init
var initCmd = &cobra.Command{
	Use:           "init",
	Short:         "Initializes a project configuration",
	Long:          `Initializes a project configuration`,
	Args:          cmdValidateInitArgs,
	RunE:          cmdRunInit,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file")

	// Add the init command and its associated flags to the root command
	rootCmd.AddCommand(initCmd)
}

// cmdValidateInitArgs makes sure that there are no positional arguments provided to the init command
func cmdValidateInitArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("init does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the init command", err)
		return err
	}
	return nil
}

// cmdRunInit writes a default project configuration file to the output path (or harness.json in the working
// directory).
func cmdRunInit(cmd *cobra.Command, args []string) error {
	// Check if we were given an output path for the config file
	outputFlagUsed := cmd.Flags().Changed("out")
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	// If we weren't, use the default config filename in the working directory
	if !outputFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the init command", err)
			return err
		}
		outputPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Refuse to clobber an existing configuration.
	if utils.FileExists(outputPath) {
		err = fmt.Errorf("a project configuration already exists at %v", outputPath)
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	projectConfig := config.GetDefaultProjectConfig()
	err = projectConfig.WriteToFile(outputPath)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	cmdLogger.Info("Project configuration successfully created at: ", colors.Bold, outputPath, colors.Reset)
	return nil
}
