package store

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldName returns the case-folded, trimmed form of name. Two names are
// considered equal among siblings when their folded forms match.
//
// A fresh Caser is used per call since Casers are not safe for concurrent use.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
