package valuegeneration

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/chaintest/harness/chain"
	"github.com/stretchr/testify/assert"
)

// newTestGenerator creates a deterministic RandomValueGenerator over an empty value set.
func newTestGenerator(seed int64) *RandomValueGenerator {
	config := &RandomValueGeneratorConfig{
		MaxStringLength:     64,
		MaxBytesLength:      64,
		ValueSetProbability: 0.25,
	}
	return NewRandomValueGenerator(config, NewValueSet(), rand.New(rand.NewSource(seed)))
}

// TestGenerateIntegerBounds ensures generated integers respect the requested signedness and bit length.
func TestGenerateIntegerBounds(t *testing.T) {
	generator := newTestGenerator(7)

	for _, bitLength := range []int{8, 16, 64, 256} {
		for _, signed := range []bool{true, false} {
			for i := 0; i < 100; i++ {
				value := generator.GenerateInteger(signed, bitLength)
				assert.LessOrEqual(t, value.BitLen(), bitLength)
				if !signed {
					assert.GreaterOrEqual(t, value.Sign(), 0)
				}
			}
		}
	}
}

// TestGenerateStringAndBytesLengths ensures generated sequences respect the configured maximum lengths.
func TestGenerateStringAndBytesLengths(t *testing.T) {
	generator := newTestGenerator(11)

	for i := 0; i < 100; i++ {
		assert.LessOrEqual(t, len(generator.GenerateString()), 64)
		assert.LessOrEqual(t, len(generator.GenerateBytes()), 64)
	}
}

// TestGeneratorDeterminism ensures two generators built from the same seed emit identical sequences.
func TestGeneratorDeterminism(t *testing.T) {
	generatorA := newTestGenerator(42)
	generatorB := newTestGenerator(42)

	for i := 0; i < 50; i++ {
		assert.Equal(t, generatorA.GenerateInteger(false, 256), generatorB.GenerateInteger(false, 256))
		assert.Equal(t, generatorA.GenerateString(), generatorB.GenerateString())
		assert.Equal(t, generatorA.GenerateAddress(), generatorB.GenerateAddress())
		assert.Equal(t, generatorA.GenerateBool(), generatorB.GenerateBool())
	}
}

// TestValueSetBias ensures a generator with a certain value set probability draws known addresses.
func TestValueSetBias(t *testing.T) {
	valueSet := NewValueSet()
	known := chain.MustHexToAddress("0x1234")
	valueSet.AddAddress(known)

	config := &RandomValueGeneratorConfig{
		MaxStringLength:     8,
		MaxBytesLength:      8,
		ValueSetProbability: 1.0,
	}
	generator := NewRandomValueGenerator(config, valueSet, rand.New(rand.NewSource(3)))

	// With probability 1, every generated address should come from the value set.
	for i := 0; i < 20; i++ {
		assert.Equal(t, known, generator.GenerateAddress())
	}
}

// TestShrinkingMovesTowardSimplerValues ensures every shrinking mutation yields a value no more complex than its
// input.
func TestShrinkingMovesTowardSimplerValues(t *testing.T) {
	mutator := NewShrinkingValueMutator(NewValueSet(), rand.New(rand.NewSource(5)))

	// Integers shrink toward zero in absolute magnitude.
	value := big.NewInt(1_000_000)
	for i := 0; i < 200; i++ {
		shrunk := mutator.MutateInteger(value, true, 256)
		assert.LessOrEqual(t, new(big.Int).Abs(shrunk).Cmp(new(big.Int).Abs(value)), 0)
		value = shrunk
	}
	assert.Equal(t, 0, value.Sign())

	// Strings shrink toward the empty string or toward zeroed bytes.
	s := "counterexample"
	for i := 0; i < 200; i++ {
		shrunk := mutator.MutateString(s)
		assert.LessOrEqual(t, len(shrunk), len(s))
		s = shrunk
	}

	// Addresses and booleans shrink to their boundary values outright.
	assert.Equal(t, chain.ZeroAddress, mutator.MutateAddress(chain.MustHexToAddress("0xabcdef")))
	assert.False(t, mutator.MutateBool(true))
}

// TestShrinkIntegerRespectsUnsignedBounds ensures shrinking an unsigned integer never produces a negative value.
func TestShrinkIntegerRespectsUnsignedBounds(t *testing.T) {
	mutator := NewShrinkingValueMutator(NewValueSet(), rand.New(rand.NewSource(9)))

	value := big.NewInt(3)
	for i := 0; i < 100; i++ {
		value = mutator.MutateInteger(value, false, 8)
		assert.GreaterOrEqual(t, value.Sign(), 0)
		assert.LessOrEqual(t, value.BitLen(), 8)
	}
}
