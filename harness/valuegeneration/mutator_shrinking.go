package valuegeneration

import (
	"math/big"
	"math/rand"

	"github.com/chaintest/harness/chain"
	"github.com/chaintest/harness/utils"
	"github.com/chaintest/harness/utils/randomutils"
)

// ShrinkingValueMutator represents a ValueMutator used to shrink failing test case inputs. Every mutation moves a
// value toward a simpler form: integers toward zero, sequences toward empty, addresses toward the zero address, and
// booleans toward false.
type ShrinkingValueMutator struct {
	// valueSet contains a set of values the mutator uses as subtraction candidates for integer shrinking.
	valueSet *ValueSet

	// randomProvider offers a source of random data.
	randomProvider *rand.Rand

	// integerStrategies weights the integer shrinking strategies for random selection.
	integerStrategies *randomutils.WeightedRandomChooser[func(*ShrinkingValueMutator, *big.Int, []*big.Int) *big.Int]

	// sequenceStrategies weights the byte/rune sequence shrinking strategies for random selection.
	sequenceStrategies *randomutils.WeightedRandomChooser[func(*ShrinkingValueMutator, []byte) []byte]
}

// NewShrinkingValueMutator creates a new ShrinkingValueMutator using a ValueSet to seed base values for integer
// shrinking.
func NewShrinkingValueMutator(valueSet *ValueSet, randomProvider *rand.Rand) *ShrinkingValueMutator {
	mutator := &ShrinkingValueMutator{
		valueSet:           valueSet,
		randomProvider:     randomProvider,
		integerStrategies:  randomutils.NewWeightedRandomChooser[func(*ShrinkingValueMutator, *big.Int, []*big.Int) *big.Int](randomProvider),
		sequenceStrategies: randomutils.NewWeightedRandomChooser[func(*ShrinkingValueMutator, []byte) []byte](randomProvider),
	}

	// Ensure some initial values this mutator depends on for basic integer shrinking exist in the set.
	mutator.valueSet.AddInteger(big.NewInt(0))
	mutator.valueSet.AddInteger(big.NewInt(1))
	mutator.valueSet.AddInteger(big.NewInt(2))

	// Halving converges faster on large magnitudes, so it carries more weight than single subtraction.
	mutator.integerStrategies.AddChoices(
		randomutils.NewWeightedRandomChoice(shrinkIntegerHalve, 2),
		randomutils.NewWeightedRandomChoice(shrinkIntegerSubtract, 1),
	)
	mutator.sequenceStrategies.AddChoices(
		randomutils.NewWeightedRandomChoice(shrinkSequenceTruncate, 2),
		randomutils.NewWeightedRandomChoice(shrinkSequenceZeroElement, 1),
	)
	return mutator
}

// shrinkIntegerHalve divides the integer by two, performing a binary search on magnitude across repeated
// applications.
func shrinkIntegerHalve(g *ShrinkingValueMutator, x *big.Int, inputs []*big.Int) *big.Int {
	// Quo truncates toward zero, so negative values shrink toward zero as well.
	return big.NewInt(0).Quo(x, big.NewInt(2))
}

// shrinkIntegerSubtract moves the integer toward zero by a randomly selected input amount, clamping at zero so
// shrinking never crosses signs.
func shrinkIntegerSubtract(g *ShrinkingValueMutator, x *big.Int, inputs []*big.Int) *big.Int {
	if x.Sign() == 0 {
		return big.NewInt(0)
	}
	delta := big.NewInt(0).Abs(inputs[g.randomProvider.Intn(len(inputs))])
	var shrunk *big.Int
	if x.Sign() < 0 {
		shrunk = big.NewInt(0).Add(x, delta)
		if shrunk.Sign() > 0 {
			shrunk.SetInt64(0)
		}
	} else {
		shrunk = big.NewInt(0).Sub(x, delta)
		if shrunk.Sign() < 0 {
			shrunk.SetInt64(0)
		}
	}
	return shrunk
}

// shrinkSequenceTruncate removes a random element from the sequence.
func shrinkSequenceTruncate(g *ShrinkingValueMutator, b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	i := g.randomProvider.Intn(len(b))
	shrunk := make([]byte, 0, len(b)-1)
	shrunk = append(shrunk, b[:i]...)
	return append(shrunk, b[i+1:]...)
}

// shrinkSequenceZeroElement replaces a random element of the sequence with zero.
func shrinkSequenceZeroElement(g *ShrinkingValueMutator, b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	shrunk := make([]byte, len(b))
	copy(shrunk, b)
	shrunk[g.randomProvider.Intn(len(shrunk))] = 0
	return shrunk
}

// MutateAddress takes an address input and returns a mutated value based off the input. Shrinking substitutes the
// zero address as the simplest boundary value.
func (g *ShrinkingValueMutator) MutateAddress(addr chain.Address) chain.Address {
	return chain.ZeroAddress
}

// MutateBool takes a boolean input and returns a mutated value based off the input. Shrinking always moves toward
// false.
func (g *ShrinkingValueMutator) MutateBool(bl bool) bool {
	return false
}

// MutateBytes takes a dynamic-sized byte array input and returns a shrunk value based off the input.
func (g *ShrinkingValueMutator) MutateBytes(b []byte) []byte {
	strategy, err := g.sequenceStrategies.Choose()
	if err != nil {
		return b
	}
	return (*strategy)(g, b)
}

// MutateString takes a string input and returns a shrunk value based off the input.
func (g *ShrinkingValueMutator) MutateString(s string) string {
	strategy, err := g.sequenceStrategies.Choose()
	if err != nil {
		return s
	}
	return string((*strategy)(g, []byte(s)))
}

// MutateInteger takes an integer input and returns a shrunk value based off the input, constrained to the given
// signedness and bit length.
func (g *ShrinkingValueMutator) MutateInteger(i *big.Int, signed bool, bitLength int) *big.Int {
	// Calculate our integer bounds.
	min, max := utils.GetIntegerConstraints(signed, bitLength)

	// Obtain our subtraction inputs from the value set.
	inputs := g.valueSet.Integers()

	// Constrain the starting point, shrink it, then correct any underflow/overflow.
	input := utils.ConstrainIntegerToBounds(new(big.Int).Set(i), min, max)
	strategy, err := g.integerStrategies.Choose()
	if err != nil {
		return input
	}
	input = (*strategy)(g, input, inputs)
	return utils.ConstrainIntegerToBounds(input, min, max)
}
