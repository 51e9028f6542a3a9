package harness

import (
	"fmt"

	"github.com/chaintest/harness/chain"
	"github.com/chaintest/harness/logging"
)

// TestCaseStatus describes the state of a test case.
type TestCaseStatus string

const (
	// TestCaseStatusNotStarted describes a test case which has not yet been executed.
	TestCaseStatusNotStarted TestCaseStatus = "NOT STARTED"
	// TestCaseStatusRunning describes a test case which is currently executing.
	TestCaseStatusRunning TestCaseStatus = "RUNNING"
	// TestCaseStatusPassed describes a test case which executed and passed.
	TestCaseStatusPassed TestCaseStatus = "PASSED"
	// TestCaseStatusFailed describes a test case which executed and failed.
	TestCaseStatusFailed TestCaseStatus = "FAILED"
	// TestCaseStatusTimeout describes a test case whose remaining work was aborted by the run budget. This is a
	// distinct verdict from pass/fail.
	TestCaseStatusTimeout TestCaseStatus = "TIMEOUT"
)

// TestCase describes a single test discovered at suite load time. It is immutable after discovery: the runner
// executes it once directly, or many times under the fuzzer when its parameter schema is non-empty.
type TestCase struct {
	// Name describes the unique name of the test case within its suite.
	Name string

	// Params describes the ordered semantic types of the case's fuzzed parameters. An empty schema means the case
	// runs once without fuzzing.
	Params ParamSchema

	// Body describes the test body. Fuzzed inputs, if any, are available through TestContext.Inputs.
	Body func(tc *TestContext)
}

// Suite describes a named collection of test cases sharing a setup routine. SetUp runs fresh before every case
// (and every fuzz iteration), so no state is shared between executions.
type Suite struct {
	// Name describes the name of the suite.
	Name string

	// SetUp initializes the suite's contracts and fixtures against a fresh TestContext. It may be nil.
	SetUp func(tc *TestContext) error

	// Cases describes the test cases of the suite.
	Cases []TestCase
}

// TestContext is handed to setup routines and test bodies. It wraps a fresh ExecutionContext and Asserter per
// execution and holds the fuzzed inputs for parameterized cases. Control-interface misuse and unexpected reverts
// surfaced through the Must* helpers fail the current case without affecting the rest of the suite.
type TestContext struct {
	// Execution describes the execution context owning the caller override stack and all dispatched state.
	Execution *ExecutionContext

	// Asserter records assertion outcomes for this execution.
	Asserter *Asserter

	// Inputs describes the fuzzed input tuple for parameterized cases, in schema order. Nil for direct cases.
	Inputs []any

	// Senders describes the pre-funded caller addresses available to this execution, for use as prank identities
	// and transfer recipients.
	Senders []chain.Address

	// Deployer describes the default caller identity of the execution context.
	Deployer chain.Address

	// Logger describes the logger test bodies may use for diagnostics.
	Logger *logging.Logger

	// values holds named fixtures stored by the suite's setup routine for use in test bodies.
	values map[string]any
}

// newTestContext creates a TestContext over the provided execution context.
func newTestContext(execution *ExecutionContext, logger *logging.Logger) *TestContext {
	return &TestContext{
		Execution: execution,
		Asserter:  NewAsserter(),
		Logger:    logger,
		values:    make(map[string]any),
	}
}

// SetValue stores a named fixture (typically a deployed contract address) for retrieval in test bodies.
func (tc *TestContext) SetValue(key string, value any) {
	tc.values[key] = value
}

// Value retrieves a named fixture stored during setup. It raises a case-scoped fault if the fixture is missing,
// as that indicates a suite wiring bug rather than a contract defect.
func (tc *TestContext) Value(key string) any {
	v, ok := tc.values[key]
	if !ok {
		panic(&executionFaultSignal{err: fmt.Errorf("no fixture named '%s' was stored during setup", key)})
	}
	return v
}

// AddressValue retrieves a named fixture stored during setup as an address.
func (tc *TestContext) AddressValue(key string) chain.Address {
	addr, ok := tc.Value(key).(chain.Address)
	if !ok {
		panic(&executionFaultSignal{err: fmt.Errorf("fixture '%s' is not an address", key)})
	}
	return addr
}

// MustDeploy deploys a contract model and fails the current case if deployment reverts.
func (tc *TestContext) MustDeploy(model *chain.ContractModel, constructorArgs ...any) chain.Address {
	address, err := tc.Execution.Deploy(model, constructorArgs)
	if err != nil {
		panic(&executionFaultSignal{err: err})
	}
	return address
}

// MustDispatch dispatches a call and fails the current case if the call reverts. Tests expecting a revert should
// use Execution.Dispatch directly and inspect the returned error.
func (tc *TestContext) MustDispatch(call Call) *chain.CallResult {
	result, err := tc.Execution.Dispatch(call)
	if err != nil {
		panic(&executionFaultSignal{err: err})
	}
	return result
}

// PrankOnce pushes a single-call caller override, consumed by the very next dispatch.
func (tc *TestContext) PrankOnce(identity chain.Address) {
	tc.Execution.PrankOnce(identity)
}

// PrankPersist pushes a persistent caller override and fails the current case on conflict.
func (tc *TestContext) PrankPersist(identity chain.Address) {
	if err := tc.Execution.PrankPersist(identity); err != nil {
		panic(&executionFaultSignal{err: err})
	}
}

// StopPrank pops the persistent caller override and fails the current case if none is active.
func (tc *TestContext) StopPrank() {
	if err := tc.Execution.StopPrank(); err != nil {
		panic(&executionFaultSignal{err: err})
	}
}
