package store

import (
	"context"
)

// ============================================================================
// ItemStore Interface
// ============================================================================

// ItemStore is the persistence contract for the item hierarchy.
//
// It is a thin keyed store with three secondary indices (parent id, item
// type and case-folded name). It does NOT enforce tree semantics: parent
// existence, sibling name uniqueness and cascading deletes are the
// responsibility of the services layered on top.
//
// Returned items are always copies. Mutating them has no effect on the
// stored records.
//
// Thread Safety:
// Implementations must be safe for concurrent use. Individual operations
// are atomic; sequences of operations are not.
//
// Lifecycle:
// Initialize must be called once before any other method. Until then every
// operation fails with ErrUninitialized. Close releases the engine.
type ItemStore interface {
	// Initialize opens or creates the backing store and its indices.
	// Calling it again on an initialized store is a no-op.
	Initialize(ctx context.Context) error

	// GetAllItems returns every stored item in unspecified order.
	GetAllItems(ctx context.Context) ([]Item, error)

	// GetItemByID returns the item with the given id.
	//
	// Returns (nil, nil) when no such item exists.
	GetItemByID(ctx context.Context, id string) (Item, error)

	// GetItemsByParent returns the direct children of parentID, in
	// unspecified order. RootID selects the top-level items.
	GetItemsByParent(ctx context.Context, parentID string) ([]Item, error)

	// GetItemsByType returns every item of the given variant.
	GetItemsByType(ctx context.Context, itemType ItemType) ([]Item, error)

	// GetItemsByName returns every item whose name matches name ignoring case.
	GetItemsByName(ctx context.Context, name string) ([]Item, error)

	// CreateItem persists a new item.
	//
	// The id and timestamps of the input are ignored: the store assigns a
	// fresh UUID and sets CreatedAt = UpdatedAt = now.
	//
	// Returns the stored record.
	CreateItem(ctx context.Context, item Item) (Item, error)

	// UpdateItem merges update over the record with the given id.
	//
	// The id, type and CreatedAt are preserved; UpdatedAt moves strictly
	// forward. Fails with ErrNotFound when the item does not exist.
	//
	// Returns the stored record.
	UpdateItem(ctx context.Context, id string, update ItemUpdate) (Item, error)

	// DeleteItem removes the record and its index entries.
	// Deleting an absent id succeeds.
	DeleteItem(ctx context.Context, id string) error

	// DeleteItemsInParent deletes every direct child of parentID one by
	// one. It is not atomic: a failure may leave some children deleted.
	DeleteItemsInParent(ctx context.Context, parentID string) error

	// DeleteItems removes all the given ids in a single atomic step.
	// Absent ids are ignored.
	DeleteItems(ctx context.Context, ids []string) error

	// Healthcheck verifies the store is operational.
	Healthcheck(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
