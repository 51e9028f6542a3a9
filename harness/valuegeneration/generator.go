package valuegeneration

import (
	"math/big"
	"math/rand"

	"github.com/chaintest/harness/chain"
)

// ValueGenerator represents an interface for a provider used to generate test case inputs for use in fuzzing
// campaigns. One generation method exists per supported semantic parameter type.
type ValueGenerator interface {
	// RandomProvider returns the internal random provider used for value generation.
	RandomProvider() *rand.Rand

	// GenerateAddress generates/selects an address to use when populating inputs.
	GenerateAddress() chain.Address

	// GenerateBool generates/selects a bool to use when populating inputs.
	GenerateBool() bool

	// GenerateBytes generates/selects a dynamic-sized byte array to use when populating inputs.
	GenerateBytes() []byte

	// GenerateString generates/selects a dynamic-sized string to use when populating inputs.
	GenerateString() string

	// GenerateInteger generates/selects an integer of the given signedness and bit length to use when populating
	// inputs.
	GenerateInteger(signed bool, bitLength int) *big.Int
}

// ValueMutator represents an interface for a provider used to mutate already-generated test case inputs. It is
// implemented by the shrinking mutator which derives simpler candidates from a failing input.
type ValueMutator interface {
	// MutateAddress takes an address input and returns a mutated value based off the input.
	MutateAddress(addr chain.Address) chain.Address

	// MutateBool takes a boolean input and returns a mutated value based off the input.
	MutateBool(bl bool) bool

	// MutateBytes takes a dynamic-sized byte array input and returns a mutated value based off the input.
	MutateBytes(b []byte) []byte

	// MutateString takes a string input and returns a mutated value based off the input.
	MutateString(s string) string

	// MutateInteger takes an integer input and returns a mutated value based off the input.
	MutateInteger(i *big.Int, signed bool, bitLength int) *big.Int
}
