// Package contracts provides the modeled contracts the harness's example suite and scenario tests run against: a
// two-function greeting contract and a minimal NFT with a single mint function.
package contracts

import (
	"github.com/chaintest/harness/chain"
	"github.com/holiman/uint256"
)

// Greeter method names.
const (
	GreeterGreet          = "greet"
	GreeterVersion        = "version"
	GreeterUpdateGreeting = "updateGreeting"
	GreeterReset          = "reset"
)

// DefaultGreeting is the greeting the Greeter contract is initialized with.
const DefaultGreeting = "gm"

// NewGreeter returns the contract model for the greeting contract. The constructor stores the deployer as the
// owner. Anyone may update the greeting, which bumps the version counter; only the owner may reset it.
func NewGreeter() *chain.ContractModel {
	return &chain.ContractModel{
		Name: "Greeter",
		Constructor: func(env *chain.CallEnv) error {
			env.State.SetValue("greeting", DefaultGreeting)
			env.State.SetValue("owner", env.Sender)
			env.State.SetWord("version", uint256.NewInt(0))
			return nil
		},
		Methods: map[string]chain.MethodHandler{
			GreeterGreet: func(env *chain.CallEnv) ([]any, error) {
				greeting, _ := env.State.Value("greeting")
				return []any{greeting}, nil
			},
			GreeterVersion: func(env *chain.CallEnv) ([]any, error) {
				return []any{env.State.Word("version")}, nil
			},
			GreeterUpdateGreeting: func(env *chain.CallEnv) ([]any, error) {
				greeting, err := env.StringArg(0)
				if err != nil {
					return nil, err
				}
				env.State.SetValue("greeting", greeting)
				version := new(uint256.Int).AddUint64(env.State.Word("version"), 1)
				env.State.SetWord("version", version)
				env.Log("GreetingUpdated(%q, version=%s)", greeting, version.String())
				return nil, nil
			},
			GreeterReset: func(env *chain.CallEnv) ([]any, error) {
				owner, _ := env.State.Value("owner")
				if owner != env.Sender {
					return nil, env.Revert("caller is not the owner")
				}
				env.State.SetValue("greeting", DefaultGreeting)
				env.Log("GreetingReset()")
				return nil, nil
			},
		},
		ViewMethods: map[string]struct{}{
			GreeterGreet:   {},
			GreeterVersion: {},
		},
	}
}
