package utils

import (
	"strings"
	"unicode"
)

// ExportFilename builds a download filename from a material title.
// Anything outside letters, digits, spaces, dashes and underscores is
// stripped so the value is safe inside a Content-Disposition header.
// An empty result falls back to "material.<ext>".
func ExportFilename(title, ext string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimRight(b.String(), " ")
	if safe == "" {
		safe = "material"
	}
	return safe + "." + ext
}
