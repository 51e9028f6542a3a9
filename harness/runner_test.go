package harness_test

import (
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/chaintest/harness/contracts"
	"github.com/chaintest/harness/harness"
	"github.com/chaintest/harness/harness/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a project configuration suited for fast deterministic test runs.
func newTestConfig(seed int64) config.ProjectConfig {
	projectConfig := config.GetDefaultProjectConfig()
	projectConfig.Runner.FuzzRuns = 20
	projectConfig.Runner.ShrinkAttempts = 2000
	projectConfig.Runner.CorpusDirectory = ""
	projectConfig.Runner.Seed = seed
	return *projectConfig
}

// TestTutorialSuitePasses runs the shipped example suite end to end: minting, pranked transfers, balance
// accounting, owner gating and the fuzzed greeting round trip must all pass.
func TestTutorialSuitePasses(t *testing.T) {
	runner, err := harness.NewRunner(newTestConfig(42), contracts.TutorialSuite())
	require.NoError(t, err)

	results, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, result := range results {
		assert.True(t, result.Passed(), "case %s failed: %s", result.CaseName, result.Message())
	}
	assert.EqualValues(t, 5, runner.Metrics().CasesExecuted().Int64())
	assert.Zero(t, runner.Metrics().CasesFailed().Int64())
}

// TestMatchCaseFilter ensures the name filter restricts which cases execute.
func TestMatchCaseFilter(t *testing.T) {
	projectConfig := newTestConfig(42)
	projectConfig.Runner.MatchCase = "fuzz_"

	runner, err := harness.NewRunner(projectConfig, contracts.TutorialSuite())
	require.NoError(t, err)

	results, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fuzz_update_greeting_round_trips", results[0].CaseName)
	require.NotNil(t, results[0].FuzzRun)
	assert.Equal(t, 20, results[0].FuzzRun.Iterations)
}

// TestSliceAssertionFailureDoesNotAbortRun ensures an equality assertion over slice operands fails only its own
// case: the run continues and later cases still execute.
func TestSliceAssertionFailureDoesNotAbortRun(t *testing.T) {
	suite := &harness.Suite{
		Name: "slices",
		Cases: []harness.TestCase{
			{
				Name: "test_slice_contents_differ",
				Body: func(tc *harness.TestContext) {
					tc.Asserter.AssertEqual([]string{"gm"}, []string{"gn"})
				},
			},
			{
				Name: "test_runs_after_slice_failure",
				Body: func(tc *harness.TestContext) {
					tc.Asserter.AssertTrue(true)
				},
			},
		},
	}

	runner, err := harness.NewRunner(newTestConfig(1), suite)
	require.NoError(t, err)

	results, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, harness.TestCaseStatusFailed, results[0].Status)
	assert.Equal(t, harness.TestCaseStatusPassed, results[1].Status)
}

// thresholdSuite returns a suite with one fuzz case failing for inputs >= 10, used to exercise shrinking and
// regression replay end to end.
func thresholdSuite() *harness.Suite {
	return &harness.Suite{
		Name: "threshold",
		Cases: []harness.TestCase{
			{
				Name:   "fuzz_value_below_threshold",
				Params: harness.ParamSchema{{Kind: harness.ParamInteger, Signed: false, BitLength: 64}},
				Body: func(tc *harness.TestContext) {
					value := tc.Inputs[0].(*big.Int)
					tc.Asserter.AssertLess(value, 10)
				},
			},
		},
	}
}

// TestFailingFuzzCaseShrinksAndReplays ensures a failing fuzz case reports a minimal counterexample, persists it,
// and replays it on the next run.
func TestFailingFuzzCaseShrinksAndReplays(t *testing.T) {
	corpusDir := t.TempDir()

	projectConfig := newTestConfig(42)
	projectConfig.Runner.CorpusDirectory = corpusDir

	runner, err := harness.NewRunner(projectConfig, thresholdSuite())
	require.NoError(t, err)
	results, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, harness.TestCaseStatusFailed, result.Status)
	require.NotNil(t, result.FuzzRun)
	require.NotNil(t, result.FuzzRun.Counterexample)
	assert.False(t, result.FuzzRun.Replayed)
	assert.Zero(t, result.FuzzRun.Counterexample[0].(*big.Int).Cmp(big.NewInt(10)))

	// A later run with a different seed replays the persisted counterexample before generating anything.
	replayConfig := newTestConfig(7)
	replayConfig.Runner.CorpusDirectory = corpusDir
	replayRunner, err := harness.NewRunner(replayConfig, thresholdSuite())
	require.NoError(t, err)
	replayResults, err := replayRunner.Run()
	require.NoError(t, err)
	require.Len(t, replayResults, 1)

	replayResult := replayResults[0]
	assert.Equal(t, harness.TestCaseStatusFailed, replayResult.Status)
	require.NotNil(t, replayResult.FuzzRun)
	assert.True(t, replayResult.FuzzRun.Replayed)
	assert.Equal(t, 1, replayResult.FuzzRun.Iterations)
	assert.Zero(t, replayResult.FuzzRun.Counterexample[0].(*big.Int).Cmp(big.NewInt(10)))
}

// TestSetupFailureFailsCase ensures a suite setup error fails the case with a reported reason rather than
// crashing the run.
func TestSetupFailureFailsCase(t *testing.T) {
	suite := &harness.Suite{
		Name: "broken",
		SetUp: func(tc *harness.TestContext) error {
			return errors.New("fixture deployment exploded")
		},
		Cases: []harness.TestCase{
			{Name: "test_never_runs", Body: func(tc *harness.TestContext) { tc.Asserter.AssertTrue(true) }},
		},
	}

	runner, err := harness.NewRunner(newTestConfig(42), suite)
	require.NoError(t, err)
	results, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, harness.TestCaseStatusFailed, results[0].Status)
	assert.Contains(t, results[0].FailureReason, "fixture deployment exploded")
}

// TestUnfuzzableSchemaFailsWithoutExecution ensures a case with an unsatisfiable schema is reported failed with a
// descriptive reason.
func TestUnfuzzableSchemaFailsWithoutExecution(t *testing.T) {
	executed := false
	suite := &harness.Suite{
		Name: "unfuzzable",
		Cases: []harness.TestCase{
			{
				Name:   "fuzz_impossible_parameter",
				Params: harness.ParamSchema{{Kind: harness.ParamInteger, BitLength: 512}},
				Body:   func(tc *harness.TestContext) { executed = true },
			},
		},
	}

	runner, err := harness.NewRunner(newTestConfig(42), suite)
	require.NoError(t, err)
	results, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, harness.TestCaseStatusFailed, results[0].Status)
	assert.Contains(t, results[0].FailureReason, "cannot be fuzzed")
	assert.False(t, executed)
}

// TestRunnerEventsPublished ensures the runner's lifecycle events fire once per run and once per case.
func TestRunnerEventsPublished(t *testing.T) {
	runner, err := harness.NewRunner(newTestConfig(42), contracts.TutorialSuite())
	require.NoError(t, err)

	runStarting := 0
	casesFinished := 0
	runCompleted := 0
	runner.Events.RunStarting.Subscribe(func(event harness.RunStartingEvent) error {
		runStarting++
		assert.Equal(t, 5, event.CaseCount)
		return nil
	})
	runner.Events.TestCaseFinished.Subscribe(func(event harness.TestCaseFinishedEvent) error {
		casesFinished++
		return nil
	})
	runner.Events.RunCompleted.Subscribe(func(event harness.RunCompletedEvent) error {
		runCompleted++
		return nil
	})

	_, err = runner.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, runStarting)
	assert.Equal(t, 5, casesFinished)
	assert.Equal(t, 1, runCompleted)
}

// TestRunBudgetMarksRemainingCasesTimedOut ensures cases not started before the run budget expires receive the
// distinct timeout verdict rather than a failure.
func TestRunBudgetMarksRemainingCasesTimedOut(t *testing.T) {
	suite := &harness.Suite{
		Name: "slow",
		Cases: []harness.TestCase{
			{
				Name: "test_slow_case",
				Body: func(tc *harness.TestContext) {
					time.Sleep(1200 * time.Millisecond)
					tc.Asserter.AssertTrue(true)
				},
			},
			{Name: "test_never_started", Body: func(tc *harness.TestContext) { tc.Asserter.AssertTrue(true) }},
		},
	}

	projectConfig := newTestConfig(42)
	projectConfig.Runner.Timeout = 1

	runner, err := harness.NewRunner(projectConfig, suite)
	require.NoError(t, err)
	results, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, harness.TestCaseStatusPassed, results[0].Status)
	assert.Equal(t, harness.TestCaseStatusTimeout, results[1].Status)
	assert.True(t, strings.Contains(results[1].FailureReason, "budget"))
}

// TestResultMessageIncludesCounterexample ensures failure reporting renders the shrunken counterexample and seed.
func TestResultMessageIncludesCounterexample(t *testing.T) {
	runner, err := harness.NewRunner(newTestConfig(42), thresholdSuite())
	require.NoError(t, err)
	results, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)

	message := results[0].Message()
	assert.Contains(t, message, "counterexample")
	assert.Contains(t, message, "seed 42")
}
