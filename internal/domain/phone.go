package domain

import (
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^0\(\d{3}\) \d{3} \d{2} \d{2}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// PhoneExample is the canonical phone layout, e.g. for error details.
const PhoneExample = "0(555) 123 45 67"

// ValidPhone reports whether phone matches the fixed 0(XXX) XXX XX XX layout.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidEmail performs a shape check only.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}
