package harness

import (
	"context"
	"math/big"
	"math/rand"

	"github.com/chaintest/harness/harness/corpus"
	"github.com/chaintest/harness/harness/valuegeneration"
	"github.com/chaintest/harness/logging"
	"github.com/chaintest/harness/utils/randomutils"
	"github.com/google/uuid"
)

// executionOutcome captures the verdict of one execution of a test body against a fresh environment.
type executionOutcome struct {
	// status describes the verdict for the execution.
	status TestCaseStatus

	// assertionResults describes the recorded assertion outcomes in call order.
	assertionResults []*AssertionResult

	// failureReason describes why the execution failed, for failures not caused by an assertion.
	failureReason string

	// gasUsed describes the accumulated gas estimate of the execution.
	gasUsed uint64

	// logs describes the ordered log messages captured during the execution.
	logs []string
}

// failed returns whether the execution concluded with a failure verdict.
func (o *executionOutcome) failed() bool {
	return o.status == TestCaseStatusFailed
}

// caseExecutor executes a test body once against a fresh environment with the provided input tuple.
type caseExecutor func(inputs []any) *executionOutcome

// Fuzzer drives randomized input campaigns for parameterized test cases: corpus replay first, then fresh
// generation, then shrinking of the first failing tuple into a locally-minimal counterexample.
type Fuzzer struct {
	// runs describes how many randomized input tuples each case is executed with.
	runs int

	// shrinkAttempts describes the maximum number of shrink candidates tried per failing tuple.
	shrinkAttempts int

	// store describes the corpus used for counterexample persistence and replay. It may be nil, which disables
	// both.
	store *corpus.Store

	// valueSet describes the base value set seeded into generators and mutators.
	valueSet *valuegeneration.ValueSet

	// logger describes the Fuzzer's logger.
	logger *logging.Logger
}

// NewFuzzer creates a Fuzzer with the provided run and shrink budgets. A nil store disables corpus persistence
// and replay.
func NewFuzzer(runs int, shrinkAttempts int, store *corpus.Store, valueSet *valuegeneration.ValueSet, logger *logging.Logger) *Fuzzer {
	return &Fuzzer{
		runs:           runs,
		shrinkAttempts: shrinkAttempts,
		store:          store,
		valueSet:       valueSet,
		logger:         logger,
	}
}

// generatorConfig returns the value generation parameters used for fuzzing campaigns.
func generatorConfig() *valuegeneration.RandomValueGeneratorConfig {
	return &valuegeneration.RandomValueGeneratorConfig{
		MaxStringLength:     64,
		MaxBytesLength:      64,
		ValueSetProbability: 0.1,
	}
}

// Fuzz executes a parameterized test case under the fuzzing campaign. The schema is validated before any
// execution; an unsatisfiable schema aborts the case with an UnfuzzableParameterError. Returns the outcome of the
// concluding execution (the minimal counterexample for failures, the last iteration otherwise) along with the
// campaign record.
func (f *Fuzzer) Fuzz(ctx context.Context, runID uuid.UUID, testCase *TestCase, seed int64, randomProvider *rand.Rand, execute caseExecutor) (*executionOutcome, *FuzzRunRecord, error) {
	// Refuse to execute anything if the schema cannot be satisfied.
	if err := testCase.Params.Validate(); err != nil {
		return nil, nil, err
	}
	schemaHash := testCase.Params.Hash()
	record := &FuzzRunRecord{Seed: seed}

	// Replay a persisted counterexample before generating anything new, so known regressions fail immediately.
	if outcome := f.replayCorpusEntry(testCase, schemaHash, record, execute); outcome != nil {
		return outcome, record, nil
	}

	var lastOutcome *executionOutcome
	for i := 0; i < f.runs; i++ {
		// Respect the run budget between iterations.
		if ctx.Err() != nil {
			return timeoutOutcome(), record, nil
		}

		// Fork a fresh random provider per iteration so each tuple derives deterministically from the seed.
		iterationProvider := randomutils.ForkRandomProvider(randomProvider)
		generator := valuegeneration.NewRandomValueGenerator(generatorConfig(), f.valueSet.Clone(), iterationProvider)
		inputs := generateInputs(testCase.Params, generator)

		outcome := execute(inputs)
		record.Iterations++
		if !outcome.failed() {
			lastOutcome = outcome
			continue
		}

		// Found a failing tuple: shrink it, persist the minimal form, and conclude the campaign.
		record.FailingInputs = inputs
		counterexample, minimalOutcome := f.shrink(ctx, testCase.Params, inputs, outcome, iterationProvider, execute)
		record.Counterexample = counterexample
		f.persistCounterexample(runID, testCase, schemaHash, seed, counterexample)
		return minimalOutcome, record, nil
	}
	return lastOutcome, record, nil
}

// replayCorpusEntry replays a persisted counterexample for the case, if one exists. Returns the failing outcome
// when the entry still fails, or nil when there is no applicable entry or the defect no longer reproduces.
func (f *Fuzzer) replayCorpusEntry(testCase *TestCase, schemaHash [32]byte, record *FuzzRunRecord, execute caseExecutor) *executionOutcome {
	if f.store == nil {
		return nil
	}
	inputs, recordedSeed, found, err := f.store.LoadCounterexample(testCase.Name, schemaHash)
	if err != nil {
		f.logger.Warn("could not load corpus entry for case ", testCase.Name, logging.StructuredLogInfo{"error": err.Error()})
		return nil
	}
	if !found || len(inputs) != len(testCase.Params) {
		return nil
	}

	outcome := execute(inputs)
	record.Iterations++
	if !outcome.failed() {
		f.logger.Debug("corpus entry for case ", testCase.Name, " no longer fails, resuming generation")
		return nil
	}
	record.Replayed = true
	record.Seed = recordedSeed
	record.FailingInputs = inputs
	record.Counterexample = inputs
	return outcome
}

// shrink minimizes a failing input tuple. Candidates are derived one mutated parameter at a time and accepted
// only when they are strictly simpler than the current best and still fail, so shrinking terminates and re-running
// it on an already-minimal tuple changes nothing.
func (f *Fuzzer) shrink(ctx context.Context, schema ParamSchema, failing []any, failingOutcome *executionOutcome, randomProvider *rand.Rand, execute caseExecutor) ([]any, *executionOutcome) {
	best := make([]any, len(failing))
	copy(best, failing)
	bestOutcome := failingOutcome
	bestComplexity := tupleComplexity(schema, best)
	if len(schema) == 0 {
		return best, bestOutcome
	}

	mutator := valuegeneration.NewShrinkingValueMutator(f.valueSet.Clone(), randomProvider)
	for attempt := 0; attempt < f.shrinkAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		index := randomProvider.Intn(len(schema))
		candidate := make([]any, len(best))
		copy(candidate, best)
		candidate[index] = schema[index].mutateValue(mutator, candidate[index])

		// Only execute candidates that are strictly simpler than the current best.
		candidateComplexity := tupleComplexity(schema, candidate)
		if candidateComplexity.Cmp(bestComplexity) >= 0 {
			continue
		}
		outcome := execute(candidate)
		if outcome.failed() {
			best = candidate
			bestOutcome = outcome
			bestComplexity = candidateComplexity
		}
	}
	return best, bestOutcome
}

// persistCounterexample records a minimal failing tuple in the corpus, if one is attached.
func (f *Fuzzer) persistCounterexample(runID uuid.UUID, testCase *TestCase, schemaHash [32]byte, seed int64, counterexample []any) {
	if f.store == nil {
		return
	}
	if err := f.store.SaveCounterexample(runID, testCase.Name, schemaHash, seed, counterexample); err != nil {
		f.logger.Warn("could not persist counterexample for case ", testCase.Name, logging.StructuredLogInfo{"error": err.Error()})
	}
}

// generateInputs produces a fresh input tuple for the schema using the provided generator.
func generateInputs(schema ParamSchema, generator valuegeneration.ValueGenerator) []any {
	inputs := make([]any, len(schema))
	for i, param := range schema {
		inputs[i] = param.generateValue(generator)
	}
	return inputs
}

// tupleComplexity totals the per-parameter complexity scores of an input tuple.
func tupleComplexity(schema ParamSchema, inputs []any) *big.Int {
	total := new(big.Int)
	for i, param := range schema {
		total.Add(total, param.valueComplexity(inputs[i]))
	}
	return total
}

// timeoutOutcome builds the verdict for a case whose remaining fuzzing work was aborted by the run budget.
func timeoutOutcome() *executionOutcome {
	return &executionOutcome{
		status:        TestCaseStatusTimeout,
		failureReason: "run time budget exceeded during fuzzing",
		logs:          []string{},
	}
}
