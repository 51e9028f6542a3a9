package chain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the expected byte length of an Address.
const AddressLength = 20

// Address represents a 20-byte account identity in the modeled execution environment.
type Address [AddressLength]byte

// ZeroAddress is the all-zero address. The modeled contracts treat it as an invalid recipient, matching common
// token semantics.
var ZeroAddress = Address{}

// BytesToAddress converts a byte slice to an Address, left-padding or truncating to AddressLength as needed.
// If the slice is longer than AddressLength, the rightmost bytes are kept.
func BytesToAddress(b []byte) Address {
	var addr Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(addr[AddressLength-len(b):], b)
	return addr
}

// HexToAddress parses a hex string (with or without a 0x prefix) into an Address.
// Returns an error if the string is not valid hex or is too long.
func HexToAddress(s string) (Address, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if len(trimmed)%2 == 1 {
		trimmed = "0" + trimmed
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("could not parse address from hex string '%s': %v", s, err)
	}
	if len(b) > AddressLength {
		return Address{}, fmt.Errorf("could not parse address from hex string '%s': too many bytes", s)
	}
	return BytesToAddress(b), nil
}

// MustHexToAddress parses a hex string into an Address and panics if parsing fails. It is intended for use with
// compile-time constant inputs such as test fixtures and config defaults.
func MustHexToAddress(s string) Address {
	addr, err := HexToAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// HexStringsToAddresses converts a list of hex strings to a list of Address objects, or returns an error if any
// fail to parse.
func HexStringsToAddresses(strs []string) ([]Address, error) {
	addresses := make([]Address, len(strs))
	for i, s := range strs {
		addr, err := HexToAddress(s)
		if err != nil {
			return nil, err
		}
		addresses[i] = addr
	}
	return addresses, nil
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}

// String returns the 0x-prefixed hex representation of the address.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}
