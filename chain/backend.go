package chain

// CallResult describes the outcome of a successful call against the execution environment.
type CallResult struct {
	// ReturnData describes the values returned by the called method, in declared order.
	ReturnData []any

	// GasUsed describes the environment's gas cost estimate for the call.
	GasUsed uint64

	// Logs describes the ordered log messages emitted during the call.
	Logs []string
}

// Backend describes an external contract execution environment the harness dispatches calls against. Bytecode
// interpretation, ABI encoding, and exact gas metering are the backend's concern; the harness only consumes this
// interface.
type Backend interface {
	// Deploy deploys the provided contract model with the given constructor arguments, using the provided sender
	// identity. Returns the address of the deployed contract, or an error if deployment reverted.
	Deploy(model *ContractModel, constructorArgs []any, sender Address) (Address, error)

	// Call executes the named method of the contract at the target address with the provided arguments and sender
	// identity. Returns the call result, or an error if the call reverted. Revert reasons propagate as a
	// *RevertError.
	Call(target Address, method string, args []any, sender Address) (*CallResult, error)
}
