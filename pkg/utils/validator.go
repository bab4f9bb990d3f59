package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !strings.Contains(email, "@") || !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// SanitizeASCII strips non-ASCII characters from a string. The PDF backend
// ships only the built-in Helvetica font set, which cannot encode them.
func SanitizeASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x20 && r < 0x7f {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CollapseSpaces trims and collapses runs of whitespace to single spaces
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
