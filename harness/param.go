package harness

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/chaintest/harness/chain"
	"github.com/chaintest/harness/harness/valuegeneration"
	"golang.org/x/crypto/sha3"
)

// ParamKind identifies the semantic type of a fuzzable test case parameter.
type ParamKind uint8

const (
	// ParamInteger describes a bounded integer parameter.
	ParamInteger ParamKind = iota
	// ParamAddress describes an account address parameter.
	ParamAddress
	// ParamString describes a dynamic-sized string parameter.
	ParamString
	// ParamBytes describes a dynamic-sized byte sequence parameter.
	ParamBytes
	// ParamBool describes a boolean parameter.
	ParamBool
)

// String returns a human-readable name for the parameter kind.
func (k ParamKind) String() string {
	switch k {
	case ParamInteger:
		return "integer"
	case ParamAddress:
		return "address"
	case ParamString:
		return "string"
	case ParamBytes:
		return "bytes"
	case ParamBool:
		return "bool"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ParamType describes the declared semantic type of a single test case parameter. The fuzzer selects a generator
// per ParamType rather than relying on runtime reflection over the test body.
type ParamType struct {
	// Kind describes the semantic type of the parameter.
	Kind ParamKind

	// Signed indicates whether an integer parameter is signed. Only meaningful for ParamInteger.
	Signed bool

	// BitLength describes the bit width of an integer parameter. Only meaningful for ParamInteger.
	BitLength int
}

// String returns a human-readable representation of the parameter type.
func (p ParamType) String() string {
	if p.Kind == ParamInteger {
		prefix := "uint"
		if p.Signed {
			prefix = "int"
		}
		return fmt.Sprintf("%s%d", prefix, p.BitLength)
	}
	return p.Kind.String()
}

// Uint256Param returns the ParamType for an unsigned 256-bit integer, the most common contract parameter type.
func Uint256Param() ParamType {
	return ParamType{Kind: ParamInteger, BitLength: 256}
}

// ParamSchema describes the ordered parameter types of a test case. A case with a non-empty schema is executed
// under the fuzzer.
type ParamSchema []ParamType

// Validate checks that every parameter in the schema describes a satisfiable domain. Returns an
// UnfuzzableParameterError for the first offending parameter, if any.
func (s ParamSchema) Validate() error {
	for i, param := range s {
		switch param.Kind {
		case ParamInteger:
			if param.BitLength <= 0 || param.BitLength > 256 {
				return &UnfuzzableParameterError{
					Index:  i,
					Param:  param,
					Reason: fmt.Sprintf("bit length %d is outside the supported range [1, 256]", param.BitLength),
				}
			}
		case ParamAddress, ParamString, ParamBytes, ParamBool:
			// Always satisfiable.
		default:
			return &UnfuzzableParameterError{
				Index:  i,
				Param:  param,
				Reason: "unknown parameter kind",
			}
		}
	}
	return nil
}

// Hash computes the keccak-256 digest of the schema's canonical encoding. The digest keys persisted
// counterexamples, so a case whose schema changes will not replay stale inputs.
func (s ParamSchema) Hash() [32]byte {
	hash := sha3.NewLegacyKeccak256()
	for _, param := range s {
		entry := make([]byte, 4)
		entry[0] = byte(param.Kind)
		if param.Signed {
			entry[1] = 1
		}
		binary.BigEndian.PutUint16(entry[2:], uint16(param.BitLength))
		hash.Write(entry)
	}
	var digest [32]byte
	copy(digest[:], hash.Sum(nil))
	return digest
}

// generateValue produces a random value for the parameter using the provided generator.
func (p ParamType) generateValue(generator valuegeneration.ValueGenerator) any {
	switch p.Kind {
	case ParamInteger:
		return generator.GenerateInteger(p.Signed, p.BitLength)
	case ParamAddress:
		return generator.GenerateAddress()
	case ParamString:
		return generator.GenerateString()
	case ParamBytes:
		return generator.GenerateBytes()
	case ParamBool:
		return generator.GenerateBool()
	default:
		return nil
	}
}

// mutateValue derives a new candidate from the provided value using the provided mutator.
func (p ParamType) mutateValue(mutator valuegeneration.ValueMutator, value any) any {
	switch p.Kind {
	case ParamInteger:
		return mutator.MutateInteger(value.(*big.Int), p.Signed, p.BitLength)
	case ParamAddress:
		return mutator.MutateAddress(value.(chain.Address))
	case ParamString:
		return mutator.MutateString(value.(string))
	case ParamBytes:
		return mutator.MutateBytes(value.([]byte))
	case ParamBool:
		return mutator.MutateBool(value.(bool))
	default:
		return value
	}
}

// valueComplexity scores how "complex" a parameter value is. Shrinking only accepts candidates with strictly lower
// total complexity, which bounds the search and makes re-shrinking an already-minimal input a no-op.
func (p ParamType) valueComplexity(value any) *big.Int {
	switch p.Kind {
	case ParamInteger:
		return new(big.Int).Abs(value.(*big.Int))
	case ParamAddress:
		// Count non-zero bytes, so the zero address is minimal.
		addr := value.(chain.Address)
		nonZero := int64(0)
		for _, b := range addr.Bytes() {
			if b != 0 {
				nonZero++
			}
		}
		return big.NewInt(nonZero)
	case ParamString:
		return sequenceComplexity([]byte(value.(string)))
	case ParamBytes:
		return sequenceComplexity(value.([]byte))
	case ParamBool:
		if value.(bool) {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	default:
		return big.NewInt(0)
	}
}

// sequenceComplexity scores a byte sequence by its length and non-zero content, so both truncation and zeroing
// count as progress during shrinking.
func sequenceComplexity(b []byte) *big.Int {
	score := int64(len(b))
	for _, c := range b {
		if c != 0 {
			score++
		}
	}
	return big.NewInt(score)
}

// formatValue renders a parameter value for reports and log output.
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("0x%x", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatInputs renders an input tuple for reports and log output.
func formatInputs(inputs []any) string {
	formatted := ""
	for i, input := range inputs {
		if i > 0 {
			formatted += ", "
		}
		formatted += formatValue(input)
	}
	return "(" + formatted + ")"
}
