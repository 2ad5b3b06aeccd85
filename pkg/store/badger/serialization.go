package badger

import (
	"encoding/json"
	"fmt"

	"github.com/marmos91/dataroom/pkg/store"
)

// Serialization Strategy
// ======================
//
// BadgerDB stores data as raw bytes. Item records are stored as JSON of
// store.Record:
//   - Human-readable, which makes inspecting a database with badger's CLI easy
//   - Schema evolution by adding optional fields
//   - Timestamps keep nanosecond precision (RFC 3339)
//
// Index entries have empty values and need no encoding.

// encodeItem serializes an item to JSON bytes.
//
// Parameters:
//   - item: The item to encode
//
// Returns:
//   - []byte: JSON-encoded record
//   - error: Encoding error if serialization fails
func encodeItem(item store.Item) ([]byte, error) {
	bytes, err := json.Marshal(store.ToRecord(item))
	if err != nil {
		return nil, fmt.Errorf("failed to encode item: %w", err)
	}
	return bytes, nil
}

// decodeItem deserializes an item from JSON bytes.
//
// This is the inverse of encodeItem, used when reading records from the
// database.
//
// Parameters:
//   - bytes: JSON-encoded record
//
// Returns:
//   - store.Item: Decoded folder or file
//   - error: Decoding error if deserialization fails or the type is unknown
func decodeItem(bytes []byte) (store.Item, error) {
	var rec store.Record
	if err := json.Unmarshal(bytes, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}

	item, err := rec.Item()
	if err != nil {
		return nil, fmt.Errorf("failed to decode item %s: %w", rec.ID, err)
	}
	return item, nil
}
