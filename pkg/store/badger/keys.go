package badger

import (
	"github.com/marmos91/dataroom/pkg/store"
)

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so we use prefixed keys to organize the
// primary records and their secondary indices into logical namespaces. This
// design:
//   - Prevents key collisions between records and index entries
//   - Enables efficient range scans (e.g., all children of a folder)
//   - Makes the database structure self-documenting
//
// Key Namespace Prefixes:
//
// Data Type          Prefix   Key Format                        Value Type
// ============================================================================
// Item Record        "i:"     i:<id>                            Record (JSON)
// Parent Index       "xp:"    xp:<parentID|~root>:<id>          empty
// Type Index         "xt:"    xt:<type>:<id>                    empty
// Name Index         "xn:"    xn:<foldedName>\x00<id>           empty
//
// Key Design Rationale:
//
// 1. Item Record (i:)
//    - One entry per folder or file, holding the complete Record
//    - Point lookup by id: O(1)
//
// 2. Parent Index (xp:)
//    - One entry per item, denormalized under its parent
//    - List children: prefix scan over "xp:<parentID>:"
//    - Top-level items use the reserved parent token "~root", which can never
//      collide with a UUID
//
// 3. Type Index (xt:)
//    - One entry per item under its variant
//    - List all folders or all files: prefix scan over "xt:<type>:"
//
// 4. Name Index (xn:)
//    - One entry per item under its case-folded name
//    - The separator is NUL because folded names may contain ':'
//    - Lookups re-check the decoded record, so a name that itself contains
//      NUL cannot produce false matches
//
// Index entries carry no value: the item id is the key suffix after the
// scanned prefix. All entries of one item are written and removed in the
// same transaction as its record.

const (
	// prefixItem is the key prefix for item records
	prefixItem = "i:"

	// prefixParentIndex is the key prefix for the parent index
	prefixParentIndex = "xp:"

	// prefixTypeIndex is the key prefix for the type index
	prefixTypeIndex = "xt:"

	// prefixNameIndex is the key prefix for the case-folded name index
	prefixNameIndex = "xn:"

	// rootParentToken stands in for store.RootID inside parent index keys
	rootParentToken = "~root"
)

// keyItem generates a key for an item record.
//
// Format: "i:<id>"
// Example: "i:550e8400-e29b-41d4-a716-446655440000"
func keyItem(id string) []byte {
	return []byte(prefixItem + id)
}

// keyParentPrefix generates the prefix scanned to list the children of parentID.
//
// Format: "xp:<parentID>:" or "xp:~root:" for top-level items
func keyParentPrefix(parentID string) []byte {
	if parentID == store.RootID {
		parentID = rootParentToken
	}
	return []byte(prefixParentIndex + parentID + ":")
}

// keyParentEntry generates the parent index entry of an item.
func keyParentEntry(parentID, id string) []byte {
	return append(keyParentPrefix(parentID), id...)
}

// keyTypePrefix generates the prefix scanned to list items of one type.
//
// Format: "xt:<type>:"
func keyTypePrefix(itemType store.ItemType) []byte {
	return []byte(prefixTypeIndex + string(itemType) + ":")
}

// keyTypeEntry generates the type index entry of an item.
func keyTypeEntry(itemType store.ItemType, id string) []byte {
	return append(keyTypePrefix(itemType), id...)
}

// keyNamePrefix generates the prefix scanned to find items by name.
//
// Format: "xn:<foldedName>\x00"
func keyNamePrefix(name string) []byte {
	return []byte(prefixNameIndex + store.FoldName(name) + "\x00")
}

// keyNameEntry generates the name index entry of an item.
func keyNameEntry(name, id string) []byte {
	return append(keyNamePrefix(name), id...)
}

// indexKeys returns every index entry key of item.
func indexKeys(item store.Item) [][]byte {
	meta := item.Meta()
	return [][]byte{
		keyParentEntry(meta.ParentID, meta.ID),
		keyTypeEntry(item.Type(), meta.ID),
		keyNameEntry(meta.Name, meta.ID),
	}
}
