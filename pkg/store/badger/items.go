package badger

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/marmos91/dataroom/internal/logger"
	"github.com/marmos91/dataroom/pkg/store"
)

// GetAllItems returns every item by scanning the record namespace.
func (s *BadgerItemStore) GetAllItems(ctx context.Context) ([]store.Item, error) {
	var items []store.Item

	err := s.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefixItem)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if len(items)%100 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			var item store.Item
			err := it.Item().Value(func(val []byte) error {
				var err error
				item, err = decodeItem(val)
				return err
			})
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, wrapError("failed to list items", err)
	}

	return items, nil
}

// GetItemByID returns the record stored under id, or (nil, nil).
func (s *BadgerItemStore) GetItemByID(ctx context.Context, id string) (store.Item, error) {
	var item store.Item

	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		item, err = getItem(txn, id)
		return err
	})
	if err != nil {
		return nil, wrapError("failed to get item", err)
	}

	return item, nil
}

// GetItemsByParent scans the parent index.
func (s *BadgerItemStore) GetItemsByParent(ctx context.Context, parentID string) ([]store.Item, error) {
	items, err := s.scanIndex(ctx, keyParentPrefix(parentID), nil)
	if err != nil {
		return nil, wrapError("failed to list children", err)
	}
	return items, nil
}

// GetItemsByType scans the type index.
func (s *BadgerItemStore) GetItemsByType(ctx context.Context, itemType store.ItemType) ([]store.Item, error) {
	items, err := s.scanIndex(ctx, keyTypePrefix(itemType), nil)
	if err != nil {
		return nil, wrapError("failed to list items by type", err)
	}
	return items, nil
}

// GetItemsByName scans the name index for the folded form of name.
func (s *BadgerItemStore) GetItemsByName(ctx context.Context, name string) ([]store.Item, error) {
	folded := store.FoldName(name)
	items, err := s.scanIndex(ctx, keyNamePrefix(name), func(item store.Item) bool {
		return store.FoldName(item.Meta().Name) == folded
	})
	if err != nil {
		return nil, wrapError("failed to list items by name", err)
	}
	return items, nil
}

// scanIndex resolves every index entry under prefix to its record.
//
// Entries whose record is missing are skipped. When keep is non-nil, only
// records it accepts are returned.
func (s *BadgerItemStore) scanIndex(ctx context.Context, prefix []byte, keep func(store.Item) bool) ([]store.Item, error) {
	items := []store.Item{}

	err := s.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		scanned := 0
		for it.Rewind(); it.Valid(); it.Next() {
			// Check context periodically
			if scanned%100 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			scanned++

			key := it.Item().Key()
			if len(key) <= len(prefix) {
				continue
			}
			id := string(key[len(prefix):])

			item, err := getItem(txn, id)
			if err != nil {
				return err
			}
			if item == nil {
				logger.Warn("Badger store: dangling index entry %q", string(key))
				continue
			}
			if keep != nil && !keep(item) {
				continue
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// CreateItem writes the record and its index entries in one transaction.
func (s *BadgerItemStore) CreateItem(ctx context.Context, item store.Item) (store.Item, error) {
	if item == nil {
		return nil, store.NewInvalidArgumentError("item is nil")
	}

	record := store.CloneItem(item)
	meta := record.Meta()
	meta.ID = uuid.NewString()
	meta.CreatedAt = store.Now()
	meta.UpdatedAt = meta.CreatedAt

	err := s.update(ctx, func(txn *badger.Txn) error {
		return putItem(txn, record)
	})
	if err != nil {
		return nil, wrapError("failed to create item", err)
	}

	logger.Debug("Badger store: created %s %s (%s)", record.Type(), meta.ID, meta.Name)
	return record, nil
}

// UpdateItem merges update over the stored record and rewrites the name index.
func (s *BadgerItemStore) UpdateItem(ctx context.Context, id string, update store.ItemUpdate) (store.Item, error) {
	var updated store.Item

	err := s.update(ctx, func(txn *badger.Txn) error {
		current, err := getItem(txn, id)
		if err != nil {
			return err
		}
		if current == nil {
			return store.NewNotFoundError(id)
		}

		if err := txn.Delete(keyNameEntry(current.Meta().Name, id)); err != nil {
			return err
		}

		meta := current.Meta()
		update.Apply(meta)
		meta.UpdatedAt = store.NextUpdatedAt(meta.UpdatedAt)

		if err := putItem(txn, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, wrapError("failed to update item", err)
	}

	return updated, nil
}

// DeleteItem removes the record and its index entries. Absent ids succeed.
func (s *BadgerItemStore) DeleteItem(ctx context.Context, id string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		return deleteItem(txn, id)
	})
	if err != nil {
		return wrapError("failed to delete item", err)
	}
	return nil
}

// DeleteItemsInParent deletes the direct children of parentID one
// transaction at a time.
func (s *BadgerItemStore) DeleteItemsInParent(ctx context.Context, parentID string) error {
	children, err := s.GetItemsByParent(ctx, parentID)
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := s.DeleteItem(ctx, child.Meta().ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteItems removes every id in a single transaction.
//
// A set too large for one BadgerDB transaction fails as a whole with
// ErrIOError and nothing is deleted.
func (s *BadgerItemStore) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	err := s.update(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := deleteItem(txn, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapError("failed to delete items", err)
	}
	return nil
}

// getItem reads and decodes the record for id within txn.
// Returns (nil, nil) when the record doesn't exist.
func getItem(txn *badger.Txn, id string) (store.Item, error) {
	entry, err := txn.Get(keyItem(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var item store.Item
	err = entry.Value(func(val []byte) error {
		var err error
		item, err = decodeItem(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// putItem writes the record and all of its index entries within txn.
func putItem(txn *badger.Txn, item store.Item) error {
	data, err := encodeItem(item)
	if err != nil {
		return err
	}

	if err := txn.Set(keyItem(item.Meta().ID), data); err != nil {
		return err
	}
	for _, key := range indexKeys(item) {
		if err := txn.Set(key, nil); err != nil {
			return err
		}
	}
	return nil
}

// deleteItem removes the record for id and all of its index entries within txn.
func deleteItem(txn *badger.Txn, id string) error {
	item, err := getItem(txn, id)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}

	if err := txn.Delete(keyItem(id)); err != nil {
		return err
	}
	for _, key := range indexKeys(item) {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// wrapError converts engine errors into StoreErrors.
//
// StoreErrors and context errors pass through unchanged.
func wrapError(message string, err error) error {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return store.NewIOError(message, err)
}

var _ store.ItemStore = (*BadgerItemStore)(nil)
