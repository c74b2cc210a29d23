package normalization

import (
	"strings"
)

// ParseInputString lowercases and trims user-supplied identifiers so
// lookups on email and username are case-insensitive.
func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
