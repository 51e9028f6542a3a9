package valuegeneration

import (
	"math/big"
	"math/rand"

	"github.com/chaintest/harness/chain"
	"github.com/chaintest/harness/utils"
)

// RandomValueGenerator generates test case inputs randomly, optionally biased toward values of significance seeded
// into a ValueSet (known accounts, magic integers, fixture strings).
type RandomValueGenerator struct {
	// config describes the configuration defining value generation parameters.
	config *RandomValueGeneratorConfig

	// valueSet contains a set of values which the generator may bias generated values toward.
	valueSet *ValueSet

	// randomProvider offers a source of random data.
	randomProvider *rand.Rand
}

// RandomValueGeneratorConfig defines the operating parameters for a RandomValueGenerator.
type RandomValueGeneratorConfig struct {
	// MaxStringLength describes the maximum length of generated strings.
	MaxStringLength int

	// MaxBytesLength describes the maximum length of generated byte sequences.
	MaxBytesLength int

	// ValueSetProbability is the probability that a generated value will be drawn from the value set rather than
	// generated randomly, provided the value set holds a value of the requested type.
	ValueSetProbability float32
}

// NewRandomValueGenerator creates a RandomValueGenerator with the provided config, value set, and random provider.
func NewRandomValueGenerator(config *RandomValueGeneratorConfig, valueSet *ValueSet, randomProvider *rand.Rand) *RandomValueGenerator {
	return &RandomValueGenerator{
		config:         config,
		valueSet:       valueSet,
		randomProvider: randomProvider,
	}
}

// RandomProvider returns the internal random provider used for value generation.
func (g *RandomValueGenerator) RandomProvider() *rand.Rand {
	return g.randomProvider
}

// GenerateAddress generates a random address, or selects a known one from the value set.
func (g *RandomValueGenerator) GenerateAddress() chain.Address {
	// Sometimes return a known address from the value set, since random addresses rarely collide with accounts the
	// tested contracts know about.
	if knownAddresses := g.valueSet.Addresses(); len(knownAddresses) > 0 && g.shouldUseValueSet() {
		return knownAddresses[g.randomProvider.Intn(len(knownAddresses))]
	}

	// Generate random bytes of the address length, then convert it to an address.
	addressBytes := make([]byte, chain.AddressLength)
	g.randomProvider.Read(addressBytes)
	return chain.BytesToAddress(addressBytes)
}

// GenerateBool generates a random bool to use when populating inputs.
func (g *RandomValueGenerator) GenerateBool() bool {
	return g.randomProvider.Uint32()%2 == 0
}

// GenerateBytes generates a random dynamic-sized byte array to use when populating inputs.
func (g *RandomValueGenerator) GenerateBytes() []byte {
	b := make([]byte, g.randomProvider.Intn(g.config.MaxBytesLength+1))
	g.randomProvider.Read(b)
	return b
}

// GenerateString generates a random dynamic-sized string, or selects a known one from the value set.
func (g *RandomValueGenerator) GenerateString() string {
	if knownStrings := g.valueSet.Strings(); len(knownStrings) > 0 && g.shouldUseValueSet() {
		return knownStrings[g.randomProvider.Intn(len(knownStrings))]
	}

	// Generate printable ASCII so failing inputs remain readable in reports.
	length := g.randomProvider.Intn(g.config.MaxStringLength + 1)
	runes := make([]byte, length)
	for i := range runes {
		runes[i] = byte(0x20 + g.randomProvider.Intn(0x7f-0x20))
	}
	return string(runes)
}

// GenerateInteger generates a random integer of the given signedness and bit length, or selects a known one from
// the value set.
func (g *RandomValueGenerator) GenerateInteger(signed bool, bitLength int) *big.Int {
	if knownIntegers := g.valueSet.Integers(); len(knownIntegers) > 0 && g.shouldUseValueSet() {
		selected := knownIntegers[g.randomProvider.Intn(len(knownIntegers))]
		return utils.ConstrainIntegerToBitLength(new(big.Int).Set(selected), signed, bitLength)
	}

	// Fill a byte array of the appropriate size with random bytes.
	byteLength := bitLength / 8
	if bitLength%8 != 0 {
		byteLength++
	}
	b := make([]byte, byteLength)
	g.randomProvider.Read(b)

	// Create an unsigned integer, then constrain it to the requested bounds.
	res := big.NewInt(0).SetBytes(b)
	return utils.ConstrainIntegerToBitLength(res, signed, bitLength)
}

// shouldUseValueSet rolls the configured probability of drawing the next value from the value set.
func (g *RandomValueGenerator) shouldUseValueSet() bool {
	return g.randomProvider.Float32() < g.config.ValueSetProbability
}
