// Package corpus persists minimal fuzzing counterexamples so later runs replay known failing inputs before
// generating new random ones.
package corpus

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver"
	"github.com/chaintest/harness/chain"
	"github.com/chaintest/harness/logging"
	"github.com/chaintest/harness/utils"
	"github.com/chaintest/harness/version"
	"github.com/fxamacker/cbor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// corpusFilename is the name of the bolt database file within the corpus directory.
const corpusFilename = "corpus.db"

// counterexamplesBucket is the bolt bucket counterexample entries are stored in.
var counterexamplesBucket = []byte("counterexamples")

// Tagged value kinds used to serialize input tuples without reflection.
const (
	kindInteger uint8 = iota
	kindAddress
	kindString
	kindBytes
	kindBool
)

// TaggedValue is the serialized form of a single counterexample input value.
type TaggedValue struct {
	// Kind describes the semantic type of the value.
	Kind uint8 `cbor:"kind"`

	// Negative indicates a negative integer value. Only meaningful for integer kinds.
	Negative bool `cbor:"negative,omitempty"`

	// Data describes the value payload: big-endian magnitude for integers, raw bytes for addresses, strings and
	// byte sequences, and a single 0/1 byte for booleans.
	Data []byte `cbor:"data"`
}

// Entry describes one persisted counterexample, keyed by test case name and parameter schema hash.
type Entry struct {
	// RunID identifies the run which recorded this entry.
	RunID string `cbor:"runId"`

	// HarnessVersion describes the harness version which wrote the entry, used for compatibility checks.
	HarnessVersion string `cbor:"harnessVersion"`

	// CaseName describes the test case the counterexample belongs to.
	CaseName string `cbor:"caseName"`

	// SchemaHash describes the hash of the case's parameter schema at record time.
	SchemaHash []byte `cbor:"schemaHash"`

	// Seed describes the random seed of the recording campaign, enabling deterministic replay.
	Seed int64 `cbor:"seed"`

	// Inputs describes the minimal failing input tuple.
	Inputs []TaggedValue `cbor:"inputs"`
}

// Store is a persistent corpus of fuzzing counterexamples backed by a bolt database.
type Store struct {
	// db describes the underlying bolt database.
	db *bbolt.DB

	// logger describes the Store's logger.
	logger *logging.Logger
}

// OpenStore opens (or creates) the corpus database within the provided directory.
func OpenStore(directory string) (*Store, error) {
	if err := utils.MakeDirectory(directory); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(filepath.Join(directory, corpusFilename), 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "could not open corpus database")
	}

	// Create the counterexamples bucket if it does not exist.
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(counterexamplesBucket)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize corpus database")
	}

	return &Store{
		db:     db,
		logger: logging.GlobalLogger.NewSubLogger("module", "corpus"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// entryKey derives the bucket key for a (case name, schema hash) pair.
func entryKey(caseName string, schemaHash [32]byte) []byte {
	return []byte(caseName + "\x00" + hex.EncodeToString(schemaHash[:]))
}

// SaveCounterexample records the minimal failing input tuple for the given case and schema, overwriting any
// previous entry for the same key.
func (s *Store) SaveCounterexample(runID uuid.UUID, caseName string, schemaHash [32]byte, seed int64, inputs []any) error {
	taggedInputs, err := encodeValues(inputs)
	if err != nil {
		return err
	}

	entry := Entry{
		RunID:          runID.String(),
		HarnessVersion: version.Version,
		CaseName:       caseName,
		SchemaHash:     schemaHash[:],
		Seed:           seed,
		Inputs:         taggedInputs,
	}
	encoded, err := cbor.Marshal(entry, cbor.EncOptions{})
	if err != nil {
		return errors.Wrap(err, "could not encode corpus entry")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(counterexamplesBucket).Put(entryKey(caseName, schemaHash), encoded)
	})
}

// LoadCounterexample retrieves the persisted counterexample for the given case and schema, if one exists and was
// written by a compatible harness version. Returns the input tuple, the recording seed, and whether an entry was
// found.
func (s *Store) LoadCounterexample(caseName string, schemaHash [32]byte) ([]any, int64, bool, error) {
	var encoded []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(counterexamplesBucket).Get(entryKey(caseName, schemaHash)); data != nil {
			encoded = make([]byte, len(data))
			copy(encoded, data)
		}
		return nil
	})
	if err != nil {
		return nil, 0, false, errors.Wrap(err, "could not read corpus entry")
	}
	if encoded == nil {
		return nil, 0, false, nil
	}

	var entry Entry
	if err = cbor.Unmarshal(encoded, &entry); err != nil {
		return nil, 0, false, errors.Wrap(err, "could not decode corpus entry")
	}

	// Skip entries written by an incompatible harness major version rather than replaying inputs whose encoding
	// may have changed.
	if !versionCompatible(entry.HarnessVersion) {
		s.logger.Warn("skipping corpus entry for case ", caseName, " written by incompatible harness version ", entry.HarnessVersion)
		return nil, 0, false, nil
	}

	inputs, err := decodeValues(entry.Inputs)
	if err != nil {
		return nil, 0, false, err
	}
	return inputs, entry.Seed, true, nil
}

// versionCompatible reports whether a corpus entry written by the given harness version can be replayed by the
// current build. Entries are compatible across minor/patch revisions of the same major version.
func versionCompatible(entryVersion string) bool {
	recorded, err := semver.NewVersion(entryVersion)
	if err != nil {
		return false
	}
	current, err := semver.NewVersion(version.Version)
	if err != nil {
		return false
	}
	return recorded.Major() == current.Major()
}

// encodeValues converts an input tuple to its serialized form.
func encodeValues(inputs []any) ([]TaggedValue, error) {
	tagged := make([]TaggedValue, len(inputs))
	for i, input := range inputs {
		switch v := input.(type) {
		case *big.Int:
			tagged[i] = TaggedValue{Kind: kindInteger, Negative: v.Sign() < 0, Data: new(big.Int).Abs(v).Bytes()}
		case chain.Address:
			tagged[i] = TaggedValue{Kind: kindAddress, Data: v.Bytes()}
		case string:
			tagged[i] = TaggedValue{Kind: kindString, Data: []byte(v)}
		case []byte:
			tagged[i] = TaggedValue{Kind: kindBytes, Data: v}
		case bool:
			data := []byte{0}
			if v {
				data[0] = 1
			}
			tagged[i] = TaggedValue{Kind: kindBool, Data: data}
		default:
			return nil, fmt.Errorf("could not serialize corpus input %d: unsupported type %T", i, input)
		}
	}
	return tagged, nil
}

// decodeValues converts serialized values back to an input tuple.
func decodeValues(tagged []TaggedValue) ([]any, error) {
	inputs := make([]any, len(tagged))
	for i, value := range tagged {
		switch value.Kind {
		case kindInteger:
			decoded := new(big.Int).SetBytes(value.Data)
			if value.Negative {
				decoded.Neg(decoded)
			}
			inputs[i] = decoded
		case kindAddress:
			inputs[i] = chain.BytesToAddress(value.Data)
		case kindString:
			inputs[i] = string(value.Data)
		case kindBytes:
			data := value.Data
			if data == nil {
				data = []byte{}
			}
			inputs[i] = data
		case kindBool:
			inputs[i] = len(value.Data) == 1 && value.Data[0] == 1
		default:
			return nil, fmt.Errorf("could not deserialize corpus input %d: unknown kind %d", i, value.Kind)
		}
	}
	return inputs, nil
}
