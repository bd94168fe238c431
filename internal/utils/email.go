package utils

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmailFormat checks the coarse address shape. Deliverability is proven
// by the verification token flow, not by parsing.
func ValidEmailFormat(email string) bool {
	return emailPattern.MatchString(email)
}
