package harness

import (
	"github.com/chaintest/harness/chain"
)

// Call describes a single message call to dispatch against the execution environment.
type Call struct {
	// Target describes the address of the contract to call.
	Target chain.Address

	// Method describes the name of the method to invoke, standing in for a function selector.
	Method string

	// Args describes the call arguments in declared order.
	Args []any
}

// ExecutionContext mediates every contract interaction of a single test case. It exclusively owns the caller
// identity override stack and routes all state reads and mutations through Dispatch, so test cases stay
// independently composable. A fresh ExecutionContext is created per test case and per fuzz iteration.
type ExecutionContext struct {
	// backend describes the execution environment calls are dispatched against.
	backend chain.Backend

	// overrides describes the caller identity override stack owned by this context.
	overrides *IdentityOverrideStack

	// gasUsed accumulates the gas estimates of every dispatch performed under this context.
	gasUsed uint64

	// logs accumulates the ordered log messages emitted by dispatched calls.
	logs []string
}

// NewExecutionContext creates an ExecutionContext over the provided backend with the given default caller
// identity.
func NewExecutionContext(backend chain.Backend, defaultCaller chain.Address) *ExecutionContext {
	return &ExecutionContext{
		backend:   backend,
		overrides: NewIdentityOverrideStack(defaultCaller),
		logs:      make([]string, 0),
	}
}

// CurrentCaller returns the effective caller identity: the top of the override stack, or the default test-runner
// identity if no override is active.
func (e *ExecutionContext) CurrentCaller() chain.Address {
	return e.overrides.EffectiveCaller()
}

// PrankOnce pushes a single-call caller override. It is consumed by the very next Dispatch or Deploy, including
// read-only dispatches. Calls to the harness's own control interface (PrankOnce, PrankPersist, StopPrank,
// CurrentCaller) do not consume it, as they never reach the execution environment.
func (e *ExecutionContext) PrankOnce(identity chain.Address) {
	e.overrides.PushSingleCall(identity)
}

// PrankPersist pushes a persistent caller override which remains effective for every subsequent dispatch until
// StopPrank is called. Returns ErrOverrideConflict if a persistent override is already active.
func (e *ExecutionContext) PrankPersist(identity chain.Address) error {
	return e.overrides.PushPersistent(identity)
}

// StopPrank pops the active persistent caller override. Returns ErrNoActiveOverride if none is active.
func (e *ExecutionContext) StopPrank() error {
	return e.overrides.StopPersistent()
}

// Deploy deploys a contract model using the effective caller identity as the deployer. Like Dispatch, it consumes
// a pending single-call override.
func (e *ExecutionContext) Deploy(model *chain.ContractModel, constructorArgs []any) (chain.Address, error) {
	sender := e.overrides.EffectiveCaller()
	address, err := e.backend.Deploy(model, constructorArgs, sender)
	e.overrides.ConsumeAfterDispatch()
	if err != nil {
		return chain.Address{}, err
	}

	// The backend reports no deployment cost, so charge the coarse deploy estimate here.
	e.gasUsed += chain.EstimateDeployGas(constructorArgs)
	return address, nil
}

// Dispatch executes a call against the execution environment using the effective caller identity as the sender.
// A pending single-call override is consumed whether or not the call succeeds. Reverts propagate as a
// *chain.RevertError.
func (e *ExecutionContext) Dispatch(call Call) (*chain.CallResult, error) {
	sender := e.overrides.EffectiveCaller()
	result, err := e.backend.Call(call.Target, call.Method, call.Args, sender)
	e.overrides.ConsumeAfterDispatch()
	if err != nil {
		return nil, err
	}

	// Accumulate the gas estimate and emitted logs for the test result.
	e.gasUsed += result.GasUsed
	e.logs = append(e.logs, result.Logs...)
	return result, nil
}

// GasUsed returns the accumulated gas estimate of every dispatch performed under this context.
func (e *ExecutionContext) GasUsed() uint64 {
	return e.gasUsed
}

// Logs returns the ordered log messages emitted by calls dispatched under this context.
func (e *ExecutionContext) Logs() []string {
	return e.logs
}
