package config

import "github.com/rs/zerolog"

// GetDefaultProjectConfig obtains a default configuration for a project.
func GetDefaultProjectConfig() *ProjectConfig {
	// Create a project configuration
	projectConfig := &ProjectConfig{
		Runner: RunnerConfig{
			FuzzRuns:        256,
			ShrinkAttempts:  4096,
			Timeout:         0,
			CorpusDirectory: "corpus",
			MatchCase:       "",
			Seed:            0,
			SenderAddresses: []string{
				"0x1111111111111111111111111111111111111111",
				"0x2222222222222222222222222222222222222222",
				"0x3333333333333333333333333333333333333333",
			},
			DeployerAddress: "0x1111111111111111111111111111111111111111",
		},
		Logging: LoggingConfig{
			Level:                zerolog.InfoLevel,
			EnableConsoleLogging: true,
			LogDirectory:         "",
		},
	}

	// Return the project configuration
	return projectConfig
}
