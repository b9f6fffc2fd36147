package format

import "strings"

// Phone rewrites a free-text phone number to the canonical local form:
// whitespace and hyphens removed, a leading "+84" or "84" country code
// replaced by a single "0". It only rewrites, never rejects; digit-count
// validation happens separately.
func Phone(s string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(cleaned, "+84"):
		return "0" + cleaned[3:]
	case strings.HasPrefix(cleaned, "84"):
		return "0" + cleaned[2:]
	}
	return cleaned
}
