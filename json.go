package idxmap

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"
)

var (
	jsonMarshal   func(v any) ([]byte, error)    = sonnet.Marshal
	jsonUnmarshal func(data []byte, v any) error = sonnet.Unmarshal
)

// SetDefaultJSONMarshal sets the JSON serialization and deserialization
// functions used by the maps. If not set, sonnet is used. Passing nil
// restores the default for that direction.
func SetDefaultJSONMarshal(marshal func(v any) ([]byte, error), unmarshal func(data []byte, v any) error) {
	if marshal == nil {
		marshal = sonnet.Marshal
	}
	if unmarshal == nil {
		unmarshal = sonnet.Unmarshal
	}
	jsonMarshal, jsonUnmarshal = marshal, unmarshal
}

// decodeEntries parses a JSON array of {"key":k,"value":v} objects and
// checks that every key is storable.
func decodeEntries[K Key, V any](data []byte) ([]EntryOf[K, V], error) {
	var entries []EntryOf[K, V]
	if err := jsonUnmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("idxmap: decode entries: %w", err)
	}
	for _, e := range entries {
		if _, ok := keyIndex(e.Key); !ok {
			return nil, fmt.Errorf("%w: %v", ErrKeyOutOfRange, e.Key)
		}
	}
	return entries, nil
}

func encodeEntries[K Key, V any](entries []EntryOf[K, V]) ([]byte, error) {
	if entries == nil {
		entries = []EntryOf[K, V]{}
	}
	data, err := jsonMarshal(entries)
	if err != nil {
		return nil, fmt.Errorf("idxmap: encode entries: %w", err)
	}
	return data, nil
}

// MarshalJSON encodes the entries, in row order, as a JSON array of
// {"key":k,"value":v} objects.
func (m *VecMap[K, V]) MarshalJSON() ([]byte, error) {
	return encodeEntries(m.rows)
}

// UnmarshalJSON replaces the contents of the map with the decoded
// entries, stored in array order. On error the map is left unchanged.
func (m *VecMap[K, V]) UnmarshalJSON(data []byte) error {
	entries, err := decodeEntries[K, V](data)
	if err != nil {
		return err
	}
	m.Clear()
	m.BatchStore(entries)
	return nil
}

// MarshalJSON encodes the entries, in ascending key order, as a JSON array
// of {"key":k,"value":v} objects.
func (m *SparseMap[K, V]) MarshalJSON() ([]byte, error) {
	return encodeEntries(m.Entries())
}

// UnmarshalJSON replaces the contents of the map with the decoded
// entries. On error the map is left unchanged.
func (m *SparseMap[K, V]) UnmarshalJSON(data []byte) error {
	entries, err := decodeEntries[K, V](data)
	if err != nil {
		return err
	}
	m.Clear()
	m.BatchStore(entries)
	return nil
}
