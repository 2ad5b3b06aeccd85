// Package snapshot exports a data room to a portable YAML document and
// restores it into another store.
//
// A snapshot carries every item record, content included. Restoring assigns
// fresh ids and timestamps: ids are remapped so parent links stay intact, and
// items are recreated parents first.
package snapshot

import (
	"bytes"
	"fmt"
	"time"

	"github.com/marmos91/dataroom/pkg/store"
	"gopkg.in/yaml.v3"
)

// FormatVersion is the document version written by Export.
const FormatVersion = 1

// Document is the serialized form of a snapshot.
type Document struct {
	Version    int            `yaml:"version"`
	ExportedAt time.Time      `yaml:"exported_at"`
	Items      []store.Record `yaml:"items"`
}

func encodeDocument(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d (expected %d)", doc.Version, FormatVersion)
	}
	return &doc, nil
}
