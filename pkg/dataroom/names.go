package dataroom

import (
	"strings"

	"github.com/marmos91/dataroom/pkg/store"
	"github.com/marmos91/dataroom/pkg/validation"
)

func subjectOf(t store.ItemType) validation.Subject {
	if t == store.ItemTypeFile {
		return validation.SubjectFile
	}
	return validation.SubjectFolder
}

func validateName(name string, subject validation.Subject) error {
	return validation.ValidateName(name, subject)
}

func checkDuplicate(name, parentID string, siblings []store.Item, excludeID string) error {
	return validation.CheckDuplicateName(name, parentID, siblings, excludeID)
}

func trimName(name string) string {
	return strings.TrimSpace(name)
}

// compareNames orders items by case-folded name, then raw name, then id.
func compareNames(a, b *store.ItemMeta) int {
	if c := strings.Compare(store.FoldName(a.Name), store.FoldName(b.Name)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
