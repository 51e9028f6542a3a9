package chain

import (
	"fmt"

	"github.com/chaintest/harness/logging"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Coarse gas schedule used by the TestChain to estimate call costs. The estimate models the dominant EVM cost
// drivers (call overhead, calldata size, storage writes) without metering individual operations.
const (
	// baseCallGas is the flat cost charged per call.
	baseCallGas = 21_000
	// baseDeployGas is the flat cost charged per deployment.
	baseDeployGas = 53_000
	// gasPerArgByte is the cost charged per byte of modeled calldata.
	gasPerArgByte = 16
	// gasPerStorageWrite is the cost charged per storage write performed by the call.
	gasPerStorageWrite = 2_900
)

// deployedContract pairs a contract model with the storage of one of its deployed instances.
type deployedContract struct {
	model *ContractModel
	state *ContractState
}

// TestChain is an in-memory Backend implementation which executes modeled contracts. It provides deterministic
// deployment addresses, revert rollback, per-call log capture, and coarse gas estimation.
type TestChain struct {
	// contracts maps deployed contract addresses to their model and storage.
	contracts map[Address]*deployedContract

	// deploymentNonces tracks the number of deployments performed per sender, used to derive deployment addresses.
	deploymentNonces map[Address]uint64

	// logger describes the TestChain's logger used to debug call execution.
	logger *logging.Logger
}

// NewTestChain creates an empty TestChain.
func NewTestChain() *TestChain {
	return &TestChain{
		contracts:        make(map[Address]*deployedContract),
		deploymentNonces: make(map[Address]uint64),
		logger:           logging.GlobalLogger.NewSubLogger("module", "chain"),
	}
}

// Deploy deploys the provided contract model, running its constructor with the given arguments and sender. The
// deployment address is derived from the sender and its deployment nonce, so repeated runs deploy to the same
// addresses. Returns the deployed contract address, or an error if the constructor reverted.
func (c *TestChain) Deploy(model *ContractModel, constructorArgs []any, sender Address) (Address, error) {
	if model == nil {
		return Address{}, fmt.Errorf("could not deploy contract: no model provided")
	}

	// Derive the deployment address from the sender and its nonce.
	address := deriveDeploymentAddress(sender, c.deploymentNonces[sender])
	c.deploymentNonces[sender]++
	if _, exists := c.contracts[address]; exists {
		return Address{}, fmt.Errorf("could not deploy contract '%s': address %v already occupied", model.Name, address)
	}

	// Initialize storage and run the constructor, if one is defined.
	state := newContractState()
	if model.Constructor != nil {
		env := &CallEnv{
			Sender: sender,
			Self:   address,
			Args:   constructorArgs,
			State:  state,
		}
		if err := model.Constructor(env); err != nil {
			return Address{}, wrapRevert(err)
		}
	}

	c.contracts[address] = &deployedContract{model: model, state: state}
	c.logger.Debug("deployed contract ", model.Name, " at ", address.String())
	return address, nil
}

// Call executes the named method of the deployed contract at the target address. State mutations made by a reverting
// call are rolled back. Returns the call result with return data, captured logs, and a gas estimate, or an error if
// the call reverted.
func (c *TestChain) Call(target Address, method string, args []any, sender Address) (*CallResult, error) {
	// Resolve the target contract and method.
	contract, ok := c.contracts[target]
	if !ok {
		return nil, NewRevertError(fmt.Sprintf("no contract deployed at %v", target))
	}
	handler, ok := contract.model.Methods[method]
	if !ok {
		return nil, NewRevertError(fmt.Sprintf("contract '%s' has no method '%s'", contract.model.Name, method))
	}

	// Snapshot storage so a revert can roll the call back.
	snap := contract.state.snapshot()
	writesBefore := contract.state.writeCount

	env := &CallEnv{
		Sender: sender,
		Self:   target,
		Args:   args,
		State:  contract.state,
	}
	returnData, err := handler(env)
	if err != nil {
		contract.state.restore(snap)
		return nil, wrapRevert(err)
	}

	// A view method performing a storage write is a modeling bug in the contract, surfaced as a revert.
	writes := contract.state.writeCount - writesBefore
	if _, isView := contract.model.ViewMethods[method]; isView && writes > 0 {
		contract.state.restore(snap)
		return nil, NewRevertError(fmt.Sprintf("view method '%s' attempted a state mutation", method))
	}

	return &CallResult{
		ReturnData: returnData,
		GasUsed:    estimateGas(baseCallGas, args, writes),
		Logs:       env.logs,
	}, nil
}

// EstimateDeployGas computes a coarse gas estimate for deploying a contract with the given constructor arguments,
// using the same schedule as calls. Constructor storage writes are not visible to callers, so they are not counted.
func EstimateDeployGas(constructorArgs []any) uint64 {
	return estimateGas(baseDeployGas, constructorArgs, 0)
}

// wrapRevert ensures errors surfaced from contract handlers propagate as revert errors.
func wrapRevert(err error) error {
	if IsRevertError(err) {
		return err
	}
	return NewRevertError(err.Error())
}

// deriveDeploymentAddress computes a deterministic deployment address from the deployer identity and its deployment
// nonce, mirroring how real chains derive contract addresses.
func deriveDeploymentAddress(sender Address, nonce uint64) Address {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(sender.Bytes())
	nonceWord := uint256.NewInt(nonce).Bytes32()
	hash.Write(nonceWord[:])
	return BytesToAddress(hash.Sum(nil))
}

// estimateGas computes a coarse gas estimate for a call given its base cost, arguments, and storage write count.
func estimateGas(base uint64, args []any, writes uint64) uint64 {
	gas := base + writes*gasPerStorageWrite
	for _, arg := range args {
		gas += argByteSize(arg) * gasPerArgByte
	}
	return gas
}

// argByteSize returns the modeled calldata size of a single call argument.
func argByteSize(arg any) uint64 {
	switch v := arg.(type) {
	case string:
		return uint64(len(v))
	case []byte:
		return uint64(len(v))
	default:
		// Words, addresses, and booleans all occupy one 32-byte calldata slot.
		return 32
	}
}
