package harness

import (
	"github.com/chaintest/harness/events"
)

// RunnerEvents defines event emitters for a Runner.
type RunnerEvents struct {
	// RunStarting emits events when the Runner has initialized state and is about to begin executing discovered
	// test cases.
	RunStarting events.EventEmitter[RunStartingEvent]

	// TestCaseFinished emits events when the Runner finishes executing a test case and its result is final.
	TestCaseFinished events.EventEmitter[TestCaseFinishedEvent]

	// RunCompleted emits events when the Runner has executed every discovered test case and aggregated the results.
	RunCompleted events.EventEmitter[RunCompletedEvent]
}

// RunStartingEvent describes an event where a harness.Runner is about to begin executing test cases.
type RunStartingEvent struct {
	// Runner represents the instance of the harness.Runner for which the event occurred.
	Runner *Runner

	// CaseCount describes the number of test cases selected for execution.
	CaseCount int
}

// TestCaseFinishedEvent describes an event where a harness.Runner finished executing a single test case.
type TestCaseFinishedEvent struct {
	// Runner represents the instance of the harness.Runner for which the event occurred.
	Runner *Runner

	// Result describes the final result of the executed test case.
	Result *TestResult
}

// RunCompletedEvent describes an event where a harness.Runner finished executing every selected test case.
type RunCompletedEvent struct {
	// Runner represents the instance of the harness.Runner for which the event occurred.
	Runner *Runner

	// Results describes the aggregated results of the run in execution order.
	Results []*TestResult
}
