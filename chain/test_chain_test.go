package chain

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCounterModel returns a minimal contract model used to exercise the TestChain: a counter with an increment
// method, a view method, and a method which always reverts after mutating state.
func newCounterModel() *ContractModel {
	return &ContractModel{
		Name: "Counter",
		Constructor: func(env *CallEnv) error {
			env.State.SetWord("count", uint256.NewInt(0))
			return nil
		},
		Methods: map[string]MethodHandler{
			"increment": func(env *CallEnv) ([]any, error) {
				next := new(uint256.Int).AddUint64(env.State.Word("count"), 1)
				env.State.SetWord("count", next)
				env.Log("incremented to %s", next.String())
				return []any{next}, nil
			},
			"count": func(env *CallEnv) ([]any, error) {
				return []any{env.State.Word("count")}, nil
			},
			"incrementThenFail": func(env *CallEnv) ([]any, error) {
				env.State.SetWord("count", new(uint256.Int).AddUint64(env.State.Word("count"), 1))
				return nil, env.Revert("always fails")
			},
			"leakyView": func(env *CallEnv) ([]any, error) {
				env.State.SetWord("count", uint256.NewInt(999))
				return nil, nil
			},
		},
		ViewMethods: map[string]struct{}{
			"count":     {},
			"leakyView": {},
		},
	}
}

// TestDeployAndCall deploys a contract model and ensures basic calls execute, return data, capture logs, and
// report a non-zero gas estimate.
func TestDeployAndCall(t *testing.T) {
	testChain := NewTestChain()
	deployer := MustHexToAddress("0x30000")

	addr, err := testChain.Deploy(newCounterModel(), nil, deployer)
	require.NoError(t, err)

	// Increment and verify return data, logs, and the gas estimate.
	result, err := testChain.Call(addr, "increment", nil, deployer)
	require.NoError(t, err)
	require.Len(t, result.ReturnData, 1)
	assert.Equal(t, uint256.NewInt(1), result.ReturnData[0])
	assert.Equal(t, []string{"incremented to 1"}, result.Logs)
	assert.Greater(t, result.GasUsed, uint64(baseCallGas))

	// The view method should observe the mutation.
	result, err = testChain.Call(addr, "count", nil, deployer)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1), result.ReturnData[0])
}

// TestRevertRollsBackState ensures a reverting call does not leave partial state mutations behind.
func TestRevertRollsBackState(t *testing.T) {
	testChain := NewTestChain()
	deployer := MustHexToAddress("0x30000")

	addr, err := testChain.Deploy(newCounterModel(), nil, deployer)
	require.NoError(t, err)

	// The failing call mutates the counter before reverting; the mutation must be rolled back.
	_, err = testChain.Call(addr, "incrementThenFail", nil, deployer)
	require.Error(t, err)
	assert.True(t, IsRevertError(err))

	result, err := testChain.Call(addr, "count", nil, deployer)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(0), result.ReturnData[0])
}

// TestViewMethodCannotWrite ensures a view method which mutates storage is rejected and rolled back.
func TestViewMethodCannotWrite(t *testing.T) {
	testChain := NewTestChain()
	deployer := MustHexToAddress("0x30000")

	addr, err := testChain.Deploy(newCounterModel(), nil, deployer)
	require.NoError(t, err)

	_, err = testChain.Call(addr, "leakyView", nil, deployer)
	require.Error(t, err)
	assert.True(t, IsRevertError(err))

	result, err := testChain.Call(addr, "count", nil, deployer)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(0), result.ReturnData[0])
}

// TestDeterministicDeploymentAddresses ensures two chains produce identical deployment addresses for the same
// sender and deployment order, and that consecutive deployments differ.
func TestDeterministicDeploymentAddresses(t *testing.T) {
	deployer := MustHexToAddress("0x30000")

	chainA := NewTestChain()
	chainB := NewTestChain()

	addrA1, err := chainA.Deploy(newCounterModel(), nil, deployer)
	require.NoError(t, err)
	addrA2, err := chainA.Deploy(newCounterModel(), nil, deployer)
	require.NoError(t, err)
	addrB1, err := chainB.Deploy(newCounterModel(), nil, deployer)
	require.NoError(t, err)

	assert.Equal(t, addrA1, addrB1)
	assert.NotEqual(t, addrA1, addrA2)
}

// TestCallUnknownTargets ensures calls to missing contracts or methods revert rather than panic.
func TestCallUnknownTargets(t *testing.T) {
	testChain := NewTestChain()
	deployer := MustHexToAddress("0x30000")

	// Call against an address with no contract deployed.
	_, err := testChain.Call(MustHexToAddress("0xdead"), "count", nil, deployer)
	require.Error(t, err)
	assert.True(t, IsRevertError(err))

	// Call a method the contract does not define.
	addr, err := testChain.Deploy(newCounterModel(), nil, deployer)
	require.NoError(t, err)
	_, err = testChain.Call(addr, "missingMethod", nil, deployer)
	require.Error(t, err)
	assert.True(t, IsRevertError(err))
}
