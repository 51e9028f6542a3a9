package harness

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FuzzRunRecord describes the fuzzing outcome attached to a failed parameterized case: the seed the campaign ran
// under, the first failing input tuple, and the minimal counterexample shrinking converged to. Counterexamples are
// persisted for regression replay across runs.
type FuzzRunRecord struct {
	// Seed describes the random seed the fuzzing campaign ran under.
	Seed int64

	// Iterations describes how many input tuples were executed before the campaign concluded.
	Iterations int

	// FailingInputs describes the first generated input tuple which failed the case, before shrinking.
	FailingInputs []any

	// Counterexample describes the locally-minimal failing input tuple shrinking converged to.
	Counterexample []any

	// Replayed indicates the counterexample came from the regression corpus rather than fresh generation.
	Replayed bool
}

// TestResult aggregates the outcome of a single test case execution. It is owned exclusively by the Runner and
// released once reporting completes.
type TestResult struct {
	// RunID identifies the run which produced this result.
	RunID uuid.UUID

	// CaseName describes the name of the executed test case.
	CaseName string

	// Status describes the verdict for the case.
	Status TestCaseStatus

	// GasUsed describes the accumulated gas estimate of every dispatch performed by the case. For fuzzed cases this
	// reports the final (counterexample or last) iteration.
	GasUsed uint64

	// Logs describes the ordered log messages captured during the case's execution.
	Logs []string

	// AssertionResults describes the recorded assertion outcomes in call order.
	AssertionResults []*AssertionResult

	// FailureReason describes why the case failed, for failures not caused by an assertion (execution faults,
	// override misuse, unfuzzable parameters).
	FailureReason string

	// FuzzRun describes the fuzzing record for parameterized cases. Nil for direct cases.
	FuzzRun *FuzzRunRecord
}

// Passed returns whether the case passed.
func (r *TestResult) Passed() bool {
	return r.Status == TestCaseStatusPassed
}

// failingAssertion returns the first failed assertion recorded for this result, or nil.
func (r *TestResult) failingAssertion() *AssertionResult {
	for _, assertion := range r.AssertionResults {
		if !assertion.Passed {
			return assertion
		}
	}
	return nil
}

// Message obtains a text-based printable message which describes the test result.
func (r *TestResult) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", r.Status, r.CaseName)

	if r.Status == TestCaseStatusPassed {
		fmt.Fprintf(&b, " (gas: %d)", r.GasUsed)
		return b.String()
	}

	if assertion := r.failingAssertion(); assertion != nil {
		fmt.Fprintf(&b, "\n\t%s", assertion.String())
	} else if r.FailureReason != "" {
		fmt.Fprintf(&b, "\n\tcause: %s", r.FailureReason)
	}

	if r.FuzzRun != nil && r.FuzzRun.Counterexample != nil {
		fmt.Fprintf(&b, "\n\tcounterexample: %s (seed %d", formatInputs(r.FuzzRun.Counterexample), r.FuzzRun.Seed)
		if r.FuzzRun.Replayed {
			b.WriteString(", replayed from corpus")
		}
		b.WriteString(")")
	}

	if len(r.Logs) > 0 {
		fmt.Fprintf(&b, "\n\tlogs:\n\t\t%s", strings.Join(r.Logs, "\n\t\t"))
	}
	return b.String()
}
