// Package harness implements a sequential contract test runner: an execution context owning caller identity
// overrides, a fail-fast assertion engine, and a fuzzer which shrinks failing inputs into minimal counterexamples
// and replays them across runs.
package harness

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"github.com/chaintest/harness/chain"
	"github.com/chaintest/harness/harness/config"
	"github.com/chaintest/harness/harness/corpus"
	"github.com/chaintest/harness/harness/valuegeneration"
	"github.com/chaintest/harness/logging"
	"github.com/chaintest/harness/utils/randomutils"
	"github.com/google/uuid"
)

// Runner executes registered test suites sequentially. Every test case (and every fuzz iteration) runs against a
// freshly provisioned chain and execution context, so no state leaks between executions.
type Runner struct {
	// config describes the project configuration the Runner operates under.
	config config.ProjectConfig

	// logger describes the Runner's logger.
	logger *logging.Logger

	// suites describes the registered test suites in registration order.
	suites []*Suite

	// senders describes the pre-funded caller addresses parsed from the configuration.
	senders []chain.Address

	// deployer describes the default caller identity parsed from the configuration.
	deployer chain.Address

	// baseValueSet describes the base value set seeded into fuzzing campaigns.
	baseValueSet *valuegeneration.ValueSet

	// store describes the corpus used for counterexample persistence. Nil when no corpus directory is configured.
	store *corpus.Store

	// metrics describes the metrics tracked for the current run.
	metrics *RunnerMetrics

	// runID uniquely identifies the current run.
	runID uuid.UUID

	// ctx describes the running context of the current run, used to enforce the run time budget.
	ctx context.Context

	// ctxCancelFunc describes a function which cancels ctx.
	ctxCancelFunc context.CancelFunc

	// Events describes the event system for the Runner.
	Events RunnerEvents
}

// selectedCase pairs a test case with its owning suite for execution.
type selectedCase struct {
	suite    *Suite
	testCase *TestCase
}

// NewRunner returns an instance of a new Runner provided a project configuration and the suites to execute, or an
// error if one is encountered while initializing it.
func NewRunner(projectConfig config.ProjectConfig, suites ...*Suite) (*Runner, error) {
	// Validate our provided config
	if err := projectConfig.Validate(); err != nil {
		return nil, err
	}

	// Parse the sender addresses from our account config.
	senders, err := chain.HexStringsToAddresses(projectConfig.Runner.SenderAddresses)
	if err != nil {
		return nil, err
	}

	// Parse the deployer address from our account config.
	deployer, err := chain.HexToAddress(projectConfig.Runner.DeployerAddress)
	if err != nil {
		return nil, err
	}

	runner := &Runner{
		config:       projectConfig,
		logger:       logging.GlobalLogger.NewSubLogger("module", "runner"),
		suites:       suites,
		senders:      senders,
		deployer:     deployer,
		baseValueSet: valuegeneration.NewValueSet(),
		metrics:      newRunnerMetrics(),
	}

	// Add our sender and deployer addresses to the base value set, so they are used as address arguments in
	// fuzzing campaigns.
	runner.baseValueSet.AddAddress(deployer)
	for _, sender := range senders {
		runner.baseValueSet.AddAddress(sender)
		runner.baseValueSet.AddString(sender.String())
	}

	// Seed string boundaries fuzzed string parameters should occasionally hit: the empty string and the hex form
	// of the known accounts.
	runner.baseValueSet.AddString("")
	runner.baseValueSet.AddString(deployer.String())
	return runner, nil
}

// Metrics returns the metrics tracked for the current run.
func (r *Runner) Metrics() *RunnerMetrics {
	return r.metrics
}

// SenderAddresses returns the pre-funded caller addresses the Runner provisions test contexts with.
func (r *Runner) SenderAddresses() []chain.Address {
	return r.senders
}

// DeployerAddress returns the default caller identity the Runner provisions test contexts with.
func (r *Runner) DeployerAddress() chain.Address {
	return r.deployer
}

// selectCases discovers the test cases to execute, applying the configured name filter.
func (r *Runner) selectCases() []selectedCase {
	selected := make([]selectedCase, 0)
	for _, suite := range r.suites {
		for i := range suite.Cases {
			testCase := &suite.Cases[i]
			if r.config.Runner.MatchCase != "" && !strings.Contains(testCase.Name, r.config.Runner.MatchCase) {
				continue
			}
			selected = append(selected, selectedCase{suite: suite, testCase: testCase})
		}
	}
	return selected
}

// Run executes every selected test case sequentially and returns the aggregated results. An error is returned only
// for infrastructure failures; test failures are reported through the results.
func (r *Runner) Run() ([]*TestResult, error) {
	r.runID = uuid.New()
	r.metrics = newRunnerMetrics()

	// Select the seed deriving all randomness for this run.
	seed := r.config.Runner.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	randomProvider := rand.New(rand.NewSource(seed))

	// Create our running context. If a timeout is configured, remaining cases receive a distinct verdict once the
	// budget is exceeded.
	r.ctx, r.ctxCancelFunc = context.WithCancel(context.Background())
	if r.config.Runner.Timeout > 0 {
		r.logger.Info("running with a timeout of ", r.config.Runner.Timeout, " seconds")
		r.ctx, r.ctxCancelFunc = context.WithTimeout(r.ctx, time.Duration(r.config.Runner.Timeout)*time.Second)
	}
	defer r.ctxCancelFunc()

	// Set up the corpus, if a directory is configured.
	if r.config.Runner.CorpusDirectory != "" {
		store, err := corpus.OpenStore(r.config.Runner.CorpusDirectory)
		if err != nil {
			return nil, err
		}
		r.store = store
		defer r.store.Close()
	}

	fuzzer := NewFuzzer(r.config.Runner.FuzzRuns, r.config.Runner.ShrinkAttempts, r.store, r.baseValueSet, r.logger)
	selected := r.selectCases()
	r.logger.Info("starting run ", r.runID.String(), " with seed ", seed, " over ", len(selected), " case(s)")

	// Publish a run starting event.
	if err := r.Events.RunStarting.Publish(RunStartingEvent{Runner: r, CaseCount: len(selected)}); err != nil {
		return nil, err
	}

	results := make([]*TestResult, 0, len(selected))
	for _, sc := range selected {
		result := r.runCase(fuzzer, seed, randomProvider, sc)
		results = append(results, result)
		r.reportResult(result)

		// Publish a test case finished event.
		if err := r.Events.TestCaseFinished.Publish(TestCaseFinishedEvent{Runner: r, Result: result}); err != nil {
			return nil, err
		}
	}

	// Publish a run completed event.
	if err := r.Events.RunCompleted.Publish(RunCompletedEvent{Runner: r, Results: results}); err != nil {
		return nil, err
	}
	return results, nil
}

// runCase executes a single selected case to a final verdict: once directly for schema-less cases, or under the
// fuzzer otherwise.
func (r *Runner) runCase(fuzzer *Fuzzer, seed int64, randomProvider *rand.Rand, sc selectedCase) *TestResult {
	result := &TestResult{
		RunID:    r.runID,
		CaseName: sc.testCase.Name,
		Status:   TestCaseStatusRunning,
	}

	// If the run budget was exceeded, remaining cases are not executed and receive a distinct verdict.
	if r.ctx.Err() != nil {
		result.Status = TestCaseStatusTimeout
		result.FailureReason = "run time budget exceeded before the case started"
		return result
	}

	if len(sc.testCase.Params) == 0 {
		outcome := r.executeOnce(sc.suite, sc.testCase, nil)
		applyOutcome(result, outcome)
		r.metrics.executions.Add(r.metrics.executions, oneBig)
	} else {
		// Derive the case's randomness from the run seed, independent of other cases.
		caseProvider := randomutils.ForkRandomProvider(randomProvider)
		execute := func(inputs []any) *executionOutcome {
			r.metrics.executions.Add(r.metrics.executions, oneBig)
			return r.executeOnce(sc.suite, sc.testCase, inputs)
		}
		outcome, fuzzRecord, err := fuzzer.Fuzz(r.ctx, r.runID, sc.testCase, seed, caseProvider, execute)
		if err != nil {
			result.Status = TestCaseStatusFailed
			result.FailureReason = err.Error()
			return result
		}
		applyOutcome(result, outcome)
		result.FuzzRun = fuzzRecord
	}
	return result
}

// executeOnce runs a test body once against a freshly provisioned chain and execution context. Assertion failures
// and execution faults raised within the body are recovered here and converted into a failure verdict.
func (r *Runner) executeOnce(suite *Suite, testCase *TestCase, inputs []any) (outcome *executionOutcome) {
	backend := chain.NewTestChain()
	execution := NewExecutionContext(backend, r.deployer)
	tc := newTestContext(execution, r.logger.NewSubLogger("case", testCase.Name))
	tc.Inputs = inputs
	tc.Senders = r.senders
	tc.Deployer = r.deployer

	outcome = &executionOutcome{status: TestCaseStatusRunning}
	defer func() {
		outcome.assertionResults = tc.Asserter.Results()
		outcome.gasUsed = execution.GasUsed()
		outcome.logs = execution.Logs()
		if recovered := recover(); recovered != nil {
			switch signal := recovered.(type) {
			case *assertionFailedSignal:
				outcome.status = TestCaseStatusFailed
			case *executionFaultSignal:
				outcome.status = TestCaseStatusFailed
				outcome.failureReason = signal.err.Error()
			default:
				// Not a verdict signal, so propagate it.
				panic(recovered)
			}
		}
	}()

	if suite.SetUp != nil {
		if err := suite.SetUp(tc); err != nil {
			outcome.status = TestCaseStatusFailed
			outcome.failureReason = fmt.Sprintf("suite setup failed: %v", err)
			return outcome
		}
	}
	testCase.Body(tc)
	outcome.status = TestCaseStatusPassed
	return outcome
}

// applyOutcome copies an execution outcome's verdict into a test result, updating the run metrics.
func applyOutcome(result *TestResult, outcome *executionOutcome) {
	result.Status = outcome.status
	result.AssertionResults = outcome.assertionResults
	result.FailureReason = outcome.failureReason
	result.GasUsed = outcome.gasUsed
	result.Logs = outcome.logs
}

// reportResult logs a case's final result and updates the run metrics.
func (r *Runner) reportResult(result *TestResult) {
	r.metrics.casesExecuted.Add(r.metrics.casesExecuted, oneBig)
	if result.Status == TestCaseStatusFailed {
		r.metrics.casesFailed.Add(r.metrics.casesFailed, oneBig)
		r.logger.Error(result.Message())
		return
	}
	r.metrics.gasUsed.Add(r.metrics.gasUsed, new(big.Int).SetUint64(result.GasUsed))
	r.logger.Info(result.Message())
}
