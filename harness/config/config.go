package config

import (
	"encoding/json"
	"os"

	"github.com/chaintest/harness/chain"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type ProjectConfig struct {
	// Runner describes the configuration used when executing test suites.
	Runner RunnerConfig `json:"runner"`

	// Logging describes the configuration used for logging.
	Logging LoggingConfig `json:"logging"`
}

// RunnerConfig describes the configuration options used by the harness.Runner.
type RunnerConfig struct {
	// FuzzRuns describes how many randomized input tuples each fuzz case is executed with. This number must be
	// positive.
	FuzzRuns int `json:"fuzzRuns"`

	// ShrinkAttempts describes the maximum number of candidate inputs the shrinker will try when minimizing a
	// failing tuple. A zero value disables shrinking.
	ShrinkAttempts int `json:"shrinkAttempts"`

	// Timeout describes a time in seconds for which the run should execute before remaining cases are marked as
	// exceeding the budget. Providing a negative or zero value will result in no timeout.
	Timeout int `json:"timeout"`

	// CorpusDirectory describes the name of the folder that will hold persisted counterexamples. If empty,
	// counterexamples are not persisted and regression replay is disabled.
	CorpusDirectory string `json:"corpusDirectory"`

	// MatchCase describes a substring filter applied to test case names. If empty, all discovered cases run.
	MatchCase string `json:"matchCase"`

	// Seed describes the seed used to derive per-case random providers. A zero value selects a time-based seed.
	Seed int64 `json:"seed"`

	// SenderAddresses describe a set of account addresses available to tests as pre-funded callers.
	SenderAddresses []string `json:"senderAddresses"`

	// DeployerAddress describes the account address used to deploy contracts during suite setup.
	DeployerAddress string `json:"deployerAddress"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// EnableConsoleLogging describes whether console logging is enabled
	EnableConsoleLogging bool `json:"enableConsoleLogging"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty, then
	// no log files are kept
	LogDirectory string `json:"logDirectory"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration on top of the defaults, so omitted fields keep sensible values.
	projectConfig := GetDefaultProjectConfig()
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify the fuzz run count is a positive number.
	if p.Runner.FuzzRuns <= 0 {
		return errors.Errorf("fuzz run count must be a positive number")
	}

	// Verify the shrink attempt budget is non-negative.
	if p.Runner.ShrinkAttempts < 0 {
		return errors.Errorf("shrink attempt count must be a non-negative number")
	}

	// Verify that senders are well-formed addresses
	if len(p.Runner.SenderAddresses) == 0 {
		return errors.Errorf("must specify one or more sender addresses")
	}
	if _, err := chain.HexStringsToAddresses(p.Runner.SenderAddresses); err != nil {
		return errors.Errorf("malformed sender address(es)")
	}

	// Verify that deployer is a well-formed address
	if _, err := chain.HexToAddress(p.Runner.DeployerAddress); err != nil {
		return errors.Errorf("malformed deployer address")
	}

	return nil
}
