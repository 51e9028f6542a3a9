package harness

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"runtime"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// AssertionKind classifies an assertion for reporting purposes.
type AssertionKind string

const (
	// AssertionKindEquality describes an equality assertion.
	AssertionKindEquality AssertionKind = "equality"
	// AssertionKindOrdering describes an ordering assertion.
	AssertionKindOrdering AssertionKind = "ordering"
	// AssertionKindTruthiness describes a truthiness assertion.
	AssertionKindTruthiness AssertionKind = "truthiness"
)

// AssertionResult records the outcome of a single assertion call.
type AssertionResult struct {
	// Kind classifies the assertion.
	Kind AssertionKind

	// Expected describes the expected value (or the expected relation for ordering assertions).
	Expected string

	// Actual describes the actual value observed.
	Actual string

	// Passed describes whether the assertion held.
	Passed bool

	// Location describes the source location of the assertion call site.
	Location string
}

// String returns a printable description of the assertion result.
func (r *AssertionResult) String() string {
	status := "passed"
	if !r.Passed {
		status = "failed"
	}
	return fmt.Sprintf("[%s] %s assertion %s: expected %s, got %s", r.Location, r.Kind, status, r.Expected, r.Actual)
}

// Asserter evaluates equality, ordering, and truthiness checks for a single test case, recording an
// AssertionResult per call. A failing assertion stops the current case at the call site (fail-fast per case); it
// never halts the rest of the suite.
type Asserter struct {
	// results describes the recorded assertion results in call order.
	results []*AssertionResult
}

// NewAsserter creates an empty Asserter.
func NewAsserter() *Asserter {
	return &Asserter{
		results: make([]*AssertionResult, 0),
	}
}

// Results returns the recorded assertion results in call order.
func (a *Asserter) Results() []*AssertionResult {
	return a.results
}

// AssertEqual records an equality assertion between the expected and actual values. Integer values of different
// representations (big.Int, uint256, native integers) compare by numeric value.
func (a *Asserter) AssertEqual(expected any, actual any) {
	a.record(&AssertionResult{
		Kind:     AssertionKindEquality,
		Expected: formatValue(expected),
		Actual:   formatValue(actual),
		Passed:   valuesEqual(expected, actual),
		Location: callerLocation(),
	})
}

// AssertTrue records a truthiness assertion over the provided value.
func (a *Asserter) AssertTrue(value bool) {
	a.record(&AssertionResult{
		Kind:     AssertionKindTruthiness,
		Expected: "true",
		Actual:   fmt.Sprintf("%v", value),
		Passed:   value,
		Location: callerLocation(),
	})
}

// AssertGreater records an ordering assertion that a > b.
func (a *Asserter) AssertGreater(x any, y any) {
	a.assertOrdering(x, y, ">", func(cmp int) bool { return cmp > 0 })
}

// AssertGreaterOrEqual records an ordering assertion that a >= b.
func (a *Asserter) AssertGreaterOrEqual(x any, y any) {
	a.assertOrdering(x, y, ">=", func(cmp int) bool { return cmp >= 0 })
}

// AssertLess records an ordering assertion that a < b.
func (a *Asserter) AssertLess(x any, y any) {
	a.assertOrdering(x, y, "<", func(cmp int) bool { return cmp < 0 })
}

// AssertLessOrEqual records an ordering assertion that a <= b.
func (a *Asserter) AssertLessOrEqual(x any, y any) {
	a.assertOrdering(x, y, "<=", func(cmp int) bool { return cmp <= 0 })
}

// AssertEqualWithTolerance records an equality assertion between two integer values interpreted as fixed-point
// numbers with the given number of fractional decimal digits. The assertion passes when the values agree to within
// one whole unit, i.e. |expected - actual| < 10^decimals.
func (a *Asserter) AssertEqualWithTolerance(expected any, actual any, decimals int32) {
	result := &AssertionResult{
		Kind:     AssertionKindEquality,
		Expected: fmt.Sprintf("%s (±1 unit at %d decimals)", formatValue(expected), decimals),
		Actual:   formatValue(actual),
		Location: callerLocation(),
	}

	expectedInt, okExpected := toBigInt(expected)
	actualInt, okActual := toBigInt(actual)
	if okExpected && okActual {
		expectedDec := decimal.NewFromBigInt(expectedInt, -decimals)
		actualDec := decimal.NewFromBigInt(actualInt, -decimals)
		result.Passed = expectedDec.Sub(actualDec).Abs().LessThan(decimal.NewFromInt(1))
	}
	a.record(result)
}

// assertOrdering evaluates an integer ordering relation and records its result.
func (a *Asserter) assertOrdering(x any, y any, relation string, holds func(cmp int) bool) {
	result := &AssertionResult{
		Kind:     AssertionKindOrdering,
		Expected: fmt.Sprintf("%s %s %s", formatValue(x), relation, formatValue(y)),
		Actual:   fmt.Sprintf("%s, %s", formatValue(x), formatValue(y)),
		Location: callerLocation(),
	}

	xInt, okX := toBigInt(x)
	yInt, okY := toBigInt(y)
	if okX && okY {
		result.Passed = holds(xInt.Cmp(yInt))
	}
	a.record(result)
}

// record stores the assertion result and, on failure, raises the case-scoped fail-fast signal.
func (a *Asserter) record(result *AssertionResult) {
	a.results = append(a.results, result)
	if !result.Passed {
		panic(&assertionFailedSignal{result: result})
	}
}

// valuesEqual compares two assertion operands, normalizing integer representations to numeric comparison and byte
// sequences to content comparison.
func valuesEqual(expected any, actual any) bool {
	// Compare numerically if both operands convert to integers.
	if expectedInt, ok := toBigInt(expected); ok {
		if actualInt, ok := toBigInt(actual); ok {
			return expectedInt.Cmp(actualInt) == 0
		}
		return false
	}

	// Compare byte sequences by content.
	if expectedBytes, ok := expected.([]byte); ok {
		if actualBytes, ok := actual.([]byte); ok {
			return bytes.Equal(expectedBytes, actualBytes)
		}
		return false
	}

	// Deep equality tolerates uncomparable operands such as slices and maps, which would panic under ==.
	return reflect.DeepEqual(expected, actual)
}

// toBigInt converts supported integer representations to a big.Int for uniform comparison.
func toBigInt(value any) (*big.Int, bool) {
	switch v := value.(type) {
	case *big.Int:
		return v, true
	case *uint256.Int:
		return v.ToBig(), true
	case int:
		return big.NewInt(int64(v)), true
	case int64:
		return big.NewInt(v), true
	case uint64:
		return new(big.Int).SetUint64(v), true
	default:
		return nil, false
	}
}

// callerLocation returns the file:line of the assertion call site, skipping the asserter's own frames.
func callerLocation() string {
	// Skip runtime.Caller, callerLocation, and the Assert* wrapper.
	for skip := 2; skip < 6; skip++ {
		_, file, line, ok := runtime.Caller(skip)
		if !ok {
			break
		}
		// Skip the asserter's internal record/assertOrdering frames.
		if !isAsserterFrame(file) {
			return fmt.Sprintf("%s:%d", file, line)
		}
	}
	return "unknown"
}

// isAsserterFrame reports whether the given source file belongs to the asserter itself.
func isAsserterFrame(file string) bool {
	return len(file) >= len("asserter.go") && file[len(file)-len("asserter.go"):] == "asserter.go"
}
