package main

import (
	"errors"
	"strings"
)

// splitArgs splits a shell line into fields. Single and double quotes group
// words so names with spaces can be passed; a backslash escapes the next
// character outside single quotes.
func splitArgs(line string) ([]string, error) {
	var (
		fields  []string
		current strings.Builder
		inField bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inField = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inField = true
		case r == ' ' || r == '\t':
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			current.WriteRune(r)
			inField = true
		}
	}

	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inField {
		fields = append(fields, current.String())
	}
	return fields, nil
}
