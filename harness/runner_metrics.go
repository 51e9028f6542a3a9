package harness

import "math/big"

// oneBig is the increment applied to run counters.
var oneBig = big.NewInt(1)

// RunnerMetrics represents a struct tracking metrics for a Runner run.
type RunnerMetrics struct {
	// casesExecuted describes the number of test cases which reached a final verdict.
	casesExecuted *big.Int

	// casesFailed describes the number of test cases which concluded with a failure verdict.
	casesFailed *big.Int

	// executions describes the total number of test body executions performed, including every fuzzing iteration
	// and shrink candidate.
	executions *big.Int

	// gasUsed describes the total gas estimate accumulated across all reported executions.
	gasUsed *big.Int
}

// newRunnerMetrics obtains a new RunnerMetrics struct with all counters zeroed.
func newRunnerMetrics() *RunnerMetrics {
	return &RunnerMetrics{
		casesExecuted: big.NewInt(0),
		casesFailed:   big.NewInt(0),
		executions:    big.NewInt(0),
		gasUsed:       big.NewInt(0),
	}
}

// CasesExecuted returns the number of test cases which reached a final verdict.
func (m *RunnerMetrics) CasesExecuted() *big.Int {
	return new(big.Int).Set(m.casesExecuted)
}

// CasesFailed returns the number of test cases which concluded with a failure verdict.
func (m *RunnerMetrics) CasesFailed() *big.Int {
	return new(big.Int).Set(m.casesFailed)
}

// Executions returns the total number of test body executions performed.
func (m *RunnerMetrics) Executions() *big.Int {
	return new(big.Int).Set(m.executions)
}

// GasUsed returns the total gas estimate accumulated across all reported executions.
func (m *RunnerMetrics) GasUsed() *big.Int {
	return new(big.Int).Set(m.gasUsed)
}
