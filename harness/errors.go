package harness

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoActiveOverride indicates StopPrank was called while no persistent caller override was active.
var ErrNoActiveOverride = errors.New("no active caller override")

// ErrOverrideConflict indicates a persistent caller override was requested while another persistent override was
// still active. Only one persistent override may be active at a time, which prevents silent identity leakage
// across calls.
var ErrOverrideConflict = errors.New("a persistent caller override is already active")

// UnfuzzableParameterError indicates a test case declares a parameter whose domain cannot be satisfied by the
// fuzzer. It aborts the case before any execution.
type UnfuzzableParameterError struct {
	// Index describes the position of the offending parameter in the case's schema.
	Index int

	// Param describes the offending parameter type.
	Param ParamType

	// Reason describes why the parameter cannot be fuzzed.
	Reason string
}

// Error returns the error message string, implementing the `error` interface.
func (e *UnfuzzableParameterError) Error() string {
	return fmt.Sprintf("parameter %d (%s) cannot be fuzzed: %s", e.Index, e.Param.String(), e.Reason)
}

// assertionFailedSignal is the panic payload raised by a failing assertion. It is recovered at the test case
// boundary and converted into a failed test result, so a failing assertion stops the current case without
// affecting the rest of the suite.
type assertionFailedSignal struct {
	// result describes the failing assertion.
	result *AssertionResult
}

// executionFaultSignal is the panic payload raised when a test body hits an unexpected execution fault (an
// unexpected revert, or misuse of the caller override stack). It is recovered at the test case boundary and
// converted into a failed test result, reported distinctly from an assertion failure.
type executionFaultSignal struct {
	// err describes the underlying fault.
	err error
}
