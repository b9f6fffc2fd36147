package utils

import (
	"fmt"
	"regexp"
)

// Validation patterns shared by the HTTP handlers and the lookup resolver.
var (
	// TaxCodePattern matches a Vietnamese business tax code: 10 digits,
	// or up to 13 for a branch suffix, submitted without dashes.
	TaxCodePattern = regexp.MustCompile(`^[0-9]{10,13}$`)

	// PhonePattern matches a normalized local phone number (10-11 digits
	// starting with 0). Normalize with format.Phone before validating.
	PhonePattern = regexp.MustCompile(`^0[0-9]{9,10}$`)

	// EmailPattern is deliberately permissive; deliverability is not our
	// problem, obvious typos are.
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateTaxCode validates a tax identifier
func ValidateTaxCode(taxCode string) error {
	if !TaxCodePattern.MatchString(taxCode) {
		return fmt.Errorf("tax code must be 10-13 digits: %s", taxCode)
	}
	return nil
}

// SanitizeString removes control characters from user input
func SanitizeString(s string) string {
	return regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
}
