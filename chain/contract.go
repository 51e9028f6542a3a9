package chain

import (
	"fmt"

	"github.com/holiman/uint256"
)

// MethodHandler defines the function type that executes a single contract method against the calling environment.
// Handlers return the method's return values, or an error to revert the call.
type MethodHandler func(env *CallEnv) ([]any, error)

// ContractModel describes a modeled contract: a constructor plus a set of named methods operating over per-contract
// storage. Models stand in for compiled bytecode, which this environment does not interpret.
type ContractModel struct {
	// Name describes the name of the modeled contract.
	Name string

	// Constructor initializes the contract's storage upon deployment. It may be nil if no initialization is needed.
	Constructor func(env *CallEnv) error

	// Methods maps method names (the modeled function selectors) to their handlers.
	Methods map[string]MethodHandler

	// ViewMethods describes the set of method names which do not mutate state. The environment rejects storage
	// writes made by these methods.
	ViewMethods map[string]struct{}
}

// ContractState holds the storage of a single deployed contract. 256-bit words and dynamic values (strings, byte
// sequences, addresses) are kept in separate mappings. State is only mutated through a CallEnv during a dispatch.
type ContractState struct {
	// words holds 256-bit word storage slots.
	words map[string]*uint256.Int

	// data holds dynamic value storage slots.
	data map[string]any

	// writeCount tracks the number of storage writes made since the last snapshot. Used for gas estimation.
	writeCount uint64
}

// newContractState creates an empty ContractState.
func newContractState() *ContractState {
	return &ContractState{
		words: make(map[string]*uint256.Int),
		data:  make(map[string]any),
	}
}

// snapshot creates a deep copy of the contract state so a reverted call can be rolled back.
func (s *ContractState) snapshot() *ContractState {
	cloned := newContractState()
	for k, v := range s.words {
		cloned.words[k] = new(uint256.Int).Set(v)
	}
	for k, v := range s.data {
		cloned.data[k] = v
	}
	return cloned
}

// restore replaces the contract state contents with those of the provided snapshot.
func (s *ContractState) restore(snap *ContractState) {
	s.words = snap.words
	s.data = snap.data
}

// Word returns a copy of the 256-bit word stored at the given slot key, or zero if the slot is unset.
func (s *ContractState) Word(key string) *uint256.Int {
	if v, ok := s.words[key]; ok {
		return new(uint256.Int).Set(v)
	}
	return uint256.NewInt(0)
}

// SetWord stores a 256-bit word at the given slot key.
func (s *ContractState) SetWord(key string, v *uint256.Int) {
	s.words[key] = new(uint256.Int).Set(v)
	s.writeCount++
}

// Value returns the dynamic value stored at the given slot key and whether the slot is set.
func (s *ContractState) Value(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// SetValue stores a dynamic value at the given slot key.
func (s *ContractState) SetValue(key string, v any) {
	s.data[key] = v
	s.writeCount++
}

// DeleteValue removes the dynamic value stored at the given slot key.
func (s *ContractState) DeleteValue(key string) {
	delete(s.data, key)
	s.writeCount++
}

// CallEnv describes the environment a MethodHandler executes in: the caller identity, the call arguments, the
// contract's storage, and a log sink.
type CallEnv struct {
	// Sender describes the effective caller identity for this call.
	Sender Address

	// Self describes the address of the contract being called.
	Self Address

	// Args describes the call arguments in declared order.
	Args []any

	// State describes the storage of the contract being called.
	State *ContractState

	// logs collects log messages emitted during this call.
	logs []string
}

// Log records a formatted log message emitted by the contract, analogous to an event emission.
func (env *CallEnv) Log(format string, args ...any) {
	env.logs = append(env.logs, fmt.Sprintf(format, args...))
}

// Revert is a convenience helper for handlers to reject the call with the given revert reason.
func (env *CallEnv) Revert(reason string) error {
	return NewRevertError(reason)
}

// AddressArg returns the call argument at the given index as an Address, or a revert error if the argument is
// missing or of the wrong type.
func (env *CallEnv) AddressArg(index int) (Address, error) {
	v, err := env.arg(index)
	if err != nil {
		return Address{}, err
	}
	addr, ok := v.(Address)
	if !ok {
		return Address{}, NewRevertError(fmt.Sprintf("argument %d is not an address", index))
	}
	return addr, nil
}

// StringArg returns the call argument at the given index as a string, or a revert error if the argument is missing
// or of the wrong type.
func (env *CallEnv) StringArg(index int) (string, error) {
	v, err := env.arg(index)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", NewRevertError(fmt.Sprintf("argument %d is not a string", index))
	}
	return s, nil
}

// WordArg returns the call argument at the given index as a 256-bit word, or a revert error if the argument is
// missing or of the wrong type.
func (env *CallEnv) WordArg(index int) (*uint256.Int, error) {
	v, err := env.arg(index)
	if err != nil {
		return nil, err
	}
	w, ok := v.(*uint256.Int)
	if !ok {
		return nil, NewRevertError(fmt.Sprintf("argument %d is not a uint256 word", index))
	}
	return new(uint256.Int).Set(w), nil
}

// arg returns the raw call argument at the given index, or a revert error if it is out of range.
func (env *CallEnv) arg(index int) (any, error) {
	if index < 0 || index >= len(env.Args) {
		return nil, NewRevertError(fmt.Sprintf("missing argument %d", index))
	}
	return env.Args[index], nil
}
