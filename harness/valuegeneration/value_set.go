package valuegeneration

import (
	"math/big"

	"github.com/chaintest/harness/chain"
	"golang.org/x/exp/maps"
)

// ValueSet represents values of significance to the tested contracts, seeded into fuzzing campaigns so generated
// inputs sometimes hit meaningful boundaries (known accounts, magic integers, fixture strings).
type ValueSet struct {
	// addresses represents a set of addresses to use in fuzz tests. A mapping is used to avoid duplicates.
	addresses map[chain.Address]any
	// integers represents a set of integers to use in fuzz tests. A mapping is used to avoid duplicates.
	integers map[string]*big.Int
	// strings represents a set of strings to use in fuzz tests. A mapping is used to avoid duplicates.
	strings map[string]any
}

// NewValueSet initializes a new ValueSet object for use with a Fuzzer.
func NewValueSet() *ValueSet {
	return &ValueSet{
		addresses: make(map[chain.Address]any, 0),
		integers:  make(map[string]*big.Int, 0),
		strings:   make(map[string]any, 0),
	}
}

// Clone creates a copy of the current ValueSet.
func (vs *ValueSet) Clone() *ValueSet {
	return &ValueSet{
		addresses: maps.Clone(vs.addresses),
		integers:  maps.Clone(vs.integers),
		strings:   maps.Clone(vs.strings),
	}
}

// Addresses returns a list of addresses contained within the set.
func (vs *ValueSet) Addresses() []chain.Address {
	return maps.Keys(vs.addresses)
}

// AddAddress adds an address to the ValueSet.
func (vs *ValueSet) AddAddress(a chain.Address) {
	vs.addresses[a] = nil
}

// Integers returns a list of integers contained within the set.
func (vs *ValueSet) Integers() []*big.Int {
	return maps.Values(vs.integers)
}

// AddInteger adds an integer to the ValueSet.
func (vs *ValueSet) AddInteger(b *big.Int) {
	vs.integers[b.String()] = new(big.Int).Set(b)
}

// Strings returns a list of strings contained within the set.
func (vs *ValueSet) Strings() []string {
	return maps.Keys(vs.strings)
}

// AddString adds a string to the ValueSet.
func (vs *ValueSet) AddString(s string) {
	vs.strings[s] = nil
}
