// Package validation holds the naming rules shared by folders and files.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/marmos91/dataroom/pkg/store"
)

// MaxNameLength is the maximum number of characters in an item name.
const MaxNameLength = 255

// validNamePattern matches names free of the characters < > : " / \ | ? *
var validNamePattern = regexp.MustCompile(`^[^<>:"/\\|?*]*$`)

// Kind classifies a validation failure.
type Kind int

const (
	// KindInvalid means the name itself breaks a rule
	KindInvalid Kind = iota

	// KindDuplicate means a sibling already uses the name
	KindDuplicate
)

// Error describes why a name was rejected.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Subject names what is being validated in error messages.
type Subject string

const (
	SubjectFolder Subject = "Folder"
	SubjectFile   Subject = "File"
)

// ValidateName checks a folder or file name.
//
// Rules, checked in order:
//   - the name must not be empty after trimming whitespace
//   - the name must not exceed MaxNameLength characters
//   - the name must not contain any of < > : " / \ | ? *
//
// Returns nil or an *Error of kind KindInvalid.
func ValidateName(name string, subject Subject) error {
	err := ozzo.Validate(strings.TrimSpace(name),
		ozzo.Required.Error(fmt.Sprintf("%s name cannot be empty", subject)),
	)
	if err == nil {
		err = ozzo.Validate(name,
			ozzo.RuneLength(0, MaxNameLength).Error(fmt.Sprintf("%s name cannot exceed %d characters", subject, MaxNameLength)),
			ozzo.Match(validNamePattern).Error(fmt.Sprintf("%s name contains invalid characters", subject)),
		)
	}
	if err != nil {
		return &Error{Kind: KindInvalid, Message: err.Error()}
	}
	return nil
}

// CheckDuplicateName rejects name if another item under parentID already
// uses it, ignoring case and surrounding whitespace.
//
// items may contain unrelated items: only those whose ParentID equals
// parentID and whose id differs from excludeID are compared. Pass an empty
// excludeID when creating.
//
// Returns nil or an *Error of kind KindDuplicate.
func CheckDuplicateName(name, parentID string, items []store.Item, excludeID string) error {
	folded := store.FoldName(name)

	for _, item := range items {
		meta := item.Meta()
		if meta.ParentID != parentID || meta.ID == excludeID {
			continue
		}
		if store.FoldName(meta.Name) == folded {
			return &Error{
				Kind:    KindDuplicate,
				Message: fmt.Sprintf("An item with the name %q already exists in this location", strings.TrimSpace(name)),
			}
		}
	}
	return nil
}
