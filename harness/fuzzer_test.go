package harness

import (
	"context"
	"math/big"
	"math/rand"
	"testing"

	"github.com/chaintest/harness/harness/corpus"
	"github.com/chaintest/harness/harness/valuegeneration"
	"github.com/chaintest/harness/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uint64Schema is the single-parameter schema used by most fuzzer tests.
var uint64Schema = ParamSchema{{Kind: ParamInteger, Signed: false, BitLength: 64}}

// newTestFuzzer creates a fuzzer with the given budgets and an optional corpus store.
func newTestFuzzer(runs int, shrinkAttempts int, store *corpus.Store) *Fuzzer {
	return NewFuzzer(runs, shrinkAttempts, store, valuegeneration.NewValueSet(), logging.NewLogger(logging.GlobalLogger.Level()))
}

// failAboveThreshold returns an executor failing whenever the single integer input is >= threshold, counting
// executions.
func failAboveThreshold(threshold int64, executions *int) caseExecutor {
	return func(inputs []any) *executionOutcome {
		*executions++
		value := inputs[0].(*big.Int)
		if value.Cmp(big.NewInt(threshold)) >= 0 {
			return &executionOutcome{status: TestCaseStatusFailed, failureReason: "value out of range"}
		}
		return &executionOutcome{status: TestCaseStatusPassed}
	}
}

// TestFuzzRejectsUnfuzzableSchema ensures an unsatisfiable parameter schema aborts the case before any execution.
func TestFuzzRejectsUnfuzzableSchema(t *testing.T) {
	fuzzer := newTestFuzzer(10, 10, nil)
	testCase := &TestCase{
		Name:   "fuzz_bad_schema",
		Params: ParamSchema{{Kind: ParamInteger, BitLength: 0}},
	}

	executions := 0
	execute := func(inputs []any) *executionOutcome {
		executions++
		return &executionOutcome{status: TestCaseStatusPassed}
	}

	_, _, err := fuzzer.Fuzz(context.Background(), uuid.New(), testCase, 1, rand.New(rand.NewSource(1)), execute)
	require.Error(t, err)
	var unfuzzable *UnfuzzableParameterError
	assert.ErrorAs(t, err, &unfuzzable)
	assert.Zero(t, executions)
}

// TestFuzzPassesWhenNoFailureFound ensures a campaign with no failing inputs runs the full budget and reports a
// passing outcome with no counterexample.
func TestFuzzPassesWhenNoFailureFound(t *testing.T) {
	fuzzer := newTestFuzzer(25, 100, nil)
	testCase := &TestCase{Name: "fuzz_always_passes", Params: uint64Schema}

	executions := 0
	execute := func(inputs []any) *executionOutcome {
		executions++
		return &executionOutcome{status: TestCaseStatusPassed}
	}

	outcome, record, err := fuzzer.Fuzz(context.Background(), uuid.New(), testCase, 1, rand.New(rand.NewSource(1)), execute)
	require.NoError(t, err)
	assert.Equal(t, TestCaseStatusPassed, outcome.status)
	assert.Equal(t, 25, executions)
	assert.Equal(t, 25, record.Iterations)
	assert.Nil(t, record.Counterexample)
	assert.False(t, record.Replayed)
}

// TestFuzzShrinksToMinimalCounterexample ensures a failing input shrinks to the boundary of the failure
// condition.
func TestFuzzShrinksToMinimalCounterexample(t *testing.T) {
	fuzzer := newTestFuzzer(10, 2000, nil)
	testCase := &TestCase{Name: "fuzz_threshold", Params: uint64Schema}

	executions := 0
	outcome, record, err := fuzzer.Fuzz(context.Background(), uuid.New(), testCase, 1, rand.New(rand.NewSource(1)), failAboveThreshold(10, &executions))
	require.NoError(t, err)
	assert.Equal(t, TestCaseStatusFailed, outcome.status)
	require.NotNil(t, record.FailingInputs)
	require.NotNil(t, record.Counterexample)

	// Shrinking only accepts strictly simpler candidates which still fail, so it converges to the threshold.
	first := record.FailingInputs[0].(*big.Int)
	minimal := record.Counterexample[0].(*big.Int)
	assert.Zero(t, minimal.Cmp(big.NewInt(10)))
	assert.True(t, minimal.Cmp(first) <= 0)
}

// TestShrinkIsIdempotentOnMinimalInput ensures re-shrinking an already-minimal failing tuple changes nothing: a
// strictly simpler candidate necessarily passes, so nothing can be accepted.
func TestShrinkIsIdempotentOnMinimalInput(t *testing.T) {
	fuzzer := newTestFuzzer(10, 500, nil)

	executions := 0
	execute := failAboveThreshold(10, &executions)
	minimal := []any{big.NewInt(10)}
	failingOutcome := execute(minimal)
	require.True(t, failingOutcome.failed())

	shrunk, outcome := fuzzer.shrink(context.Background(), uint64Schema, minimal, failingOutcome, rand.New(rand.NewSource(7)), execute)
	assert.Zero(t, shrunk[0].(*big.Int).Cmp(big.NewInt(10)))
	assert.True(t, outcome.failed())
}

// TestFuzzReplaysCorpusCounterexample ensures a persisted counterexample is replayed before generation in a later
// campaign and reported as a regression.
func TestFuzzReplaysCorpusCounterexample(t *testing.T) {
	store, err := corpus.OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	testCase := &TestCase{Name: "fuzz_regression", Params: uint64Schema}

	// First campaign: discover, shrink and persist the counterexample.
	executions := 0
	fuzzer := newTestFuzzer(10, 2000, store)
	_, firstRecord, err := fuzzer.Fuzz(context.Background(), uuid.New(), testCase, 1, rand.New(rand.NewSource(1)), failAboveThreshold(10, &executions))
	require.NoError(t, err)
	require.NotNil(t, firstRecord.Counterexample)

	// Second campaign with a different seed: the persisted inputs replay first and conclude the case immediately.
	replayExecutions := 0
	var replayedInputs []any
	execute := func(inputs []any) *executionOutcome {
		replayExecutions++
		replayedInputs = inputs
		return &executionOutcome{status: TestCaseStatusFailed}
	}
	secondFuzzer := newTestFuzzer(10, 2000, store)
	outcome, secondRecord, err := secondFuzzer.Fuzz(context.Background(), uuid.New(), testCase, 99, rand.New(rand.NewSource(99)), execute)
	require.NoError(t, err)
	assert.Equal(t, TestCaseStatusFailed, outcome.status)
	assert.True(t, secondRecord.Replayed)
	assert.Equal(t, 1, replayExecutions)
	assert.EqualValues(t, 1, secondRecord.Seed)
	assert.Zero(t, replayedInputs[0].(*big.Int).Cmp(firstRecord.Counterexample[0].(*big.Int)))
}

// TestFuzzStaleCorpusEntryResumesGeneration ensures a corpus entry which no longer fails does not conclude the
// campaign.
func TestFuzzStaleCorpusEntryResumesGeneration(t *testing.T) {
	store, err := corpus.OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	testCase := &TestCase{Name: "fuzz_stale", Params: uint64Schema}
	require.NoError(t, store.SaveCounterexample(uuid.New(), testCase.Name, testCase.Params.Hash(), 5, []any{big.NewInt(123)}))

	executions := 0
	execute := func(inputs []any) *executionOutcome {
		executions++
		return &executionOutcome{status: TestCaseStatusPassed}
	}
	fuzzer := newTestFuzzer(5, 100, store)
	outcome, record, err := fuzzer.Fuzz(context.Background(), uuid.New(), testCase, 1, rand.New(rand.NewSource(1)), execute)
	require.NoError(t, err)
	assert.Equal(t, TestCaseStatusPassed, outcome.status)
	assert.False(t, record.Replayed)

	// One replay execution plus the full generation budget.
	assert.Equal(t, 6, executions)
}

// TestFuzzHonorsRunBudget ensures an expired context yields the distinct timeout verdict without executing.
func TestFuzzHonorsRunBudget(t *testing.T) {
	fuzzer := newTestFuzzer(100, 100, nil)
	testCase := &TestCase{Name: "fuzz_timeout", Params: uint64Schema}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executions := 0
	execute := func(inputs []any) *executionOutcome {
		executions++
		return &executionOutcome{status: TestCaseStatusPassed}
	}
	outcome, record, err := fuzzer.Fuzz(ctx, uuid.New(), testCase, 1, rand.New(rand.NewSource(1)), execute)
	require.NoError(t, err)
	assert.Equal(t, TestCaseStatusTimeout, outcome.status)
	assert.Zero(t, executions)
	assert.Zero(t, record.Iterations)
}

// TestFuzzDeterministicWithSeed ensures campaigns with the same seed generate the same input sequence.
func TestFuzzDeterministicWithSeed(t *testing.T) {
	testCase := &TestCase{Name: "fuzz_deterministic", Params: uint64Schema}

	collect := func(seed int64) []*big.Int {
		collected := make([]*big.Int, 0)
		execute := func(inputs []any) *executionOutcome {
			collected = append(collected, new(big.Int).Set(inputs[0].(*big.Int)))
			return &executionOutcome{status: TestCaseStatusPassed}
		}
		fuzzer := newTestFuzzer(10, 0, nil)
		_, _, err := fuzzer.Fuzz(context.Background(), uuid.New(), testCase, seed, rand.New(rand.NewSource(seed)), execute)
		require.NoError(t, err)
		return collected
	}

	first := collect(42)
	second := collect(42)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Zero(t, first[i].Cmp(second[i]))
	}
}
