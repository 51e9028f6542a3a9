package corpus

import (
	"math/big"
	"testing"

	"github.com/chaintest/harness/chain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSaveAndLoadCounterexample ensures an input tuple survives a round trip through the store with all supported
// value types intact.
func TestSaveAndLoadCounterexample(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	schemaHash := [32]byte{0x01, 0x02}
	inputs := []any{
		big.NewInt(-1337),
		chain.MustHexToAddress("0x00000000000000000000000000000000DeaDBeef"),
		"gm",
		[]byte{0xde, 0xad},
		true,
	}
	err = store.SaveCounterexample(uuid.New(), "fuzz_updateGreeting", schemaHash, 42, inputs)
	require.NoError(t, err)

	loaded, seed, found, err := store.LoadCounterexample("fuzz_updateGreeting", schemaHash)
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 42, seed)
	require.Len(t, loaded, len(inputs))
	assert.Zero(t, inputs[0].(*big.Int).Cmp(loaded[0].(*big.Int)))
	assert.Equal(t, inputs[1], loaded[1])
	assert.Equal(t, inputs[2], loaded[2])
	assert.Equal(t, inputs[3], loaded[3])
	assert.Equal(t, inputs[4], loaded[4])
}

// TestLoadMissesOnUnknownKey ensures lookups for cases or schemas which were never recorded report no entry.
func TestLoadMissesOnUnknownKey(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	schemaHash := [32]byte{0xaa}
	_, _, found, err := store.LoadCounterexample("never_recorded", schemaHash)
	require.NoError(t, err)
	assert.False(t, found)

	// Record under one schema hash, then look up the same case under a different one.
	err = store.SaveCounterexample(uuid.New(), "fuzz_mint", schemaHash, 1, []any{big.NewInt(7)})
	require.NoError(t, err)

	_, _, found, err = store.LoadCounterexample("fuzz_mint", [32]byte{0xbb})
	require.NoError(t, err)
	assert.False(t, found)
}

// TestSaveOverwritesPreviousEntry ensures recording a new counterexample for the same key replaces the old one.
func TestSaveOverwritesPreviousEntry(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	schemaHash := [32]byte{0x03}
	require.NoError(t, store.SaveCounterexample(uuid.New(), "fuzz_transfer", schemaHash, 1, []any{big.NewInt(100)}))
	require.NoError(t, store.SaveCounterexample(uuid.New(), "fuzz_transfer", schemaHash, 2, []any{big.NewInt(5)}))

	loaded, seed, found, err := store.LoadCounterexample("fuzz_transfer", schemaHash)
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 2, seed)
	require.Len(t, loaded, 1)
	assert.Zero(t, big.NewInt(5).Cmp(loaded[0].(*big.Int)))
}

// TestIncompatibleVersionSkipped ensures entries recorded by a different major harness version are not replayed.
func TestIncompatibleVersionSkipped(t *testing.T) {
	assert.False(t, versionCompatible("999.0.0"))
	assert.False(t, versionCompatible("not-a-version"))
	assert.True(t, versionCompatible("0.1.0"))
}

// TestStorePersistsAcrossReopen ensures entries written to the database remain readable after closing and
// reopening the store.
func TestStorePersistsAcrossReopen(t *testing.T) {
	directory := t.TempDir()
	store, err := OpenStore(directory)
	require.NoError(t, err)

	schemaHash := [32]byte{0x04}
	require.NoError(t, store.SaveCounterexample(uuid.New(), "fuzz_reset", schemaHash, 9, []any{"owner only"}))
	require.NoError(t, store.Close())

	reopened, err := OpenStore(directory)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, seed, found, err := reopened.LoadCounterexample("fuzz_reset", schemaHash)
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 9, seed)
	require.Len(t, loaded, 1)
	assert.Equal(t, "owner only", loaded[0])
}
