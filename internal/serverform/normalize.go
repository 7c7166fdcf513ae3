package serverform

import "strings"

// Normalize prepares raw input for validation. It only trims surrounding
// whitespace; scheme, case and path handling belong to the validator.
func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}
