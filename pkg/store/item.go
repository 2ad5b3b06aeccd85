package store

import (
	"time"
)

// ItemType discriminates the two item variants.
type ItemType string

const (
	ItemTypeFolder ItemType = "folder"
	ItemTypeFile   ItemType = "file"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeFolder || t == ItemTypeFile
}

// RootID is the parent id of items that live at the top of the hierarchy.
const RootID = ""

// ItemMeta holds the fields shared by every item variant.
type ItemMeta struct {
	// ID is a random UUID v4 assigned by the store on creation
	ID string `json:"id"`

	// Name is the display name, unique among siblings ignoring case
	Name string `json:"name"`

	// ParentID is the id of the containing folder, or RootID
	ParentID string `json:"parentId"`

	// CreatedAt is set once on creation
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt changes on every successful update
	UpdatedAt time.Time `json:"updatedAt"`
}

// Item is a node of the hierarchy: either a *Folder or a *File.
//
// The set of variants is closed. Variant-specific fields are reached with a
// type switch or with AsFolder / AsFile.
type Item interface {
	// Meta returns the shared fields. The pointer aliases the item.
	Meta() *ItemMeta

	// Type returns the variant discriminator.
	Type() ItemType

	isItem()
}

// Folder is a container item. It has no fields beyond ItemMeta.
type Folder struct {
	ItemMeta
}

func (f *Folder) Meta() *ItemMeta { return &f.ItemMeta }
func (f *Folder) Type() ItemType  { return ItemTypeFolder }
func (*Folder) isItem()           {}

// File is a leaf item carrying an encoded document payload.
type File struct {
	ItemMeta

	// MimeType is the declared media type (always application/pdf when
	// created through the file service)
	MimeType string `json:"mimeType"`

	// Size is the decoded payload length in bytes
	Size int64 `json:"size"`

	// Content is the base64 encoding of the payload
	Content string `json:"content,omitempty"`
}

func (f *File) Meta() *ItemMeta { return &f.ItemMeta }
func (f *File) Type() ItemType  { return ItemTypeFile }
func (*File) isItem()           {}

// AsFolder returns the item as a *Folder, or nil if it is not a folder.
func AsFolder(item Item) *Folder {
	if f, ok := item.(*Folder); ok {
		return f
	}
	return nil
}

// AsFile returns the item as a *File, or nil if it is not a file.
func AsFile(item Item) *File {
	if f, ok := item.(*File); ok {
		return f
	}
	return nil
}

// CloneItem returns a deep copy of item so that stores never hand out
// references to their own records.
func CloneItem(item Item) Item {
	switch v := item.(type) {
	case *Folder:
		c := *v
		return &c
	case *File:
		c := *v
		return &c
	default:
		return nil
	}
}

// ItemUpdate lists the mutable fields of an item. Nil fields are left
// unchanged.
type ItemUpdate struct {
	Name *string
}

// Apply merges the non-nil fields of u into meta.
func (u ItemUpdate) Apply(meta *ItemMeta) {
	if u.Name != nil {
		meta.Name = *u.Name
	}
}

// Now returns the current wall-clock time in UTC with the monotonic
// reading stripped, so values survive a serialization round trip unchanged.
func Now() time.Time {
	return time.Now().UTC()
}

// NextUpdatedAt returns a timestamp for an update of a record last modified
// at prev. The result is never earlier than the wall clock and always
// strictly after prev.
func NextUpdatedAt(prev time.Time) time.Time {
	now := Now()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}
