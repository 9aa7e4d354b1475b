package utils

import (
	"regexp"
	"strings"
)

// Indonesian mobile numbers: 10-13 digits, prefix 08 locally or +62.

var nonDigit = regexp.MustCompile(`\D`)

// NormalizePhoneNumber strips formatting and stores numbers with the 62
// country code.
func NormalizePhoneNumber(phoneNumber string) string {
	digits := nonDigit.ReplaceAllString(phoneNumber, "")
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	return digits
}

func ValidatePhoneNumber(phoneNumber string) bool {
	digits := nonDigit.ReplaceAllString(phoneNumber, "")
	if strings.HasPrefix(digits, "62") {
		digits = "0" + digits[2:]
	}
	if len(digits) < 10 || len(digits) > 13 {
		return false
	}
	return strings.HasPrefix(digits, "08")
}
