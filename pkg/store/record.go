package store

import (
	"fmt"
	"time"
)

// Record is the flat, serializable form of an Item.
//
// Engines that persist bytes (badger) and the snapshot exporter both encode
// items through Record so the on-disk field names are defined in one place.
type Record struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Type      ItemType  `json:"type" yaml:"type"`
	ParentID  string    `json:"parent_id" yaml:"parent_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// File-only fields
	MimeType string `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty" yaml:"size,omitempty"`
	Content  string `json:"content,omitempty" yaml:"content,omitempty"`
}

// ToRecord flattens item into a Record.
func ToRecord(item Item) Record {
	meta := item.Meta()
	rec := Record{
		ID:        meta.ID,
		Name:      meta.Name,
		Type:      item.Type(),
		ParentID:  meta.ParentID,
		CreatedAt: meta.CreatedAt,
		UpdatedAt: meta.UpdatedAt,
	}
	if f, ok := item.(*File); ok {
		rec.MimeType = f.MimeType
		rec.Size = f.Size
		rec.Content = f.Content
	}
	return rec
}

// Item rebuilds the typed item from the record.
//
// Returns an ErrInvalidArgument StoreError if the type is unknown.
func (r Record) Item() (Item, error) {
	meta := ItemMeta{
		ID:        r.ID,
		Name:      r.Name,
		ParentID:  r.ParentID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}

	switch r.Type {
	case ItemTypeFolder:
		return &Folder{ItemMeta: meta}, nil
	case ItemTypeFile:
		return &File{
			ItemMeta: meta,
			MimeType: r.MimeType,
			Size:     r.Size,
			Content:  r.Content,
		}, nil
	default:
		return nil, NewInvalidArgumentError(fmt.Sprintf("unknown item type %q", r.Type))
	}
}
