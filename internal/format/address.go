package format

import (
	"regexp"
	"strings"
)

// countrySuffix matches an address that already ends with the country name
// in either spelling, allowing case variation, an optional leading comma,
// and trailing punctuation or whitespace.
var countrySuffix = regexp.MustCompile(`(?i)(,\s*)?(việt\s*nam|vietnam)[\s.,!]*$`)

// Address normalizes a free-text address so it always carries a country
// suffix. Input already ending with the country name is returned trimmed
// but otherwise unchanged; blank input yields an empty string.
func Address(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	if countrySuffix.MatchString(trimmed) {
		return trimmed
	}
	return trimmed + ", Việt Nam"
}
