package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfigValidates ensures the default project configuration passes its own validation.
func TestDefaultConfigValidates(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()
	assert.NoError(t, projectConfig.Validate())
	assert.Equal(t, 256, projectConfig.Runner.FuzzRuns)
	assert.Equal(t, 4096, projectConfig.Runner.ShrinkAttempts)
}

// TestConfigRoundTrip ensures a configuration written to disk reads back with the same values and that omitted
// fields fall back to defaults.
func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harness.json")

	written := GetDefaultProjectConfig()
	written.Runner.FuzzRuns = 64
	written.Runner.MatchCase = "greeter"
	require.NoError(t, written.WriteToFile(path))

	read, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 64, read.Runner.FuzzRuns)
	assert.Equal(t, "greeter", read.Runner.MatchCase)
	assert.Equal(t, written.Runner.SenderAddresses, read.Runner.SenderAddresses)
}

// TestPartialConfigKeepsDefaults ensures fields absent from the configuration file keep their default values.
func TestPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harness.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"runner": {"fuzzRuns": 16}}`), 0644))

	read, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 16, read.Runner.FuzzRuns)
	assert.Equal(t, 4096, read.Runner.ShrinkAttempts)
	assert.Equal(t, "corpus", read.Runner.CorpusDirectory)
}

// TestValidateRejectsBadValues ensures validation catches non-positive run counts and malformed addresses.
func TestValidateRejectsBadValues(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()
	projectConfig.Runner.FuzzRuns = 0
	assert.Error(t, projectConfig.Validate())

	projectConfig = GetDefaultProjectConfig()
	projectConfig.Runner.ShrinkAttempts = -1
	assert.Error(t, projectConfig.Validate())

	projectConfig = GetDefaultProjectConfig()
	projectConfig.Runner.SenderAddresses = []string{"not-an-address"}
	assert.Error(t, projectConfig.Validate())

	projectConfig = GetDefaultProjectConfig()
	projectConfig.Runner.SenderAddresses = nil
	assert.Error(t, projectConfig.Validate())

	projectConfig = GetDefaultProjectConfig()
	projectConfig.Runner.DeployerAddress = "0x123"
	assert.Error(t, projectConfig.Validate())
}

// TestReadMissingFileFails ensures reading a non-existent configuration file surfaces an error.
func TestReadMissingFileFails(t *testing.T) {
	_, err := ReadProjectConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
