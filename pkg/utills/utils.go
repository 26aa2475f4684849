// Package utils holds the small string predicates behind password validation.
package utils

import (
	"unicode"
	"unicode/utf8"
)

// HasLetter reports whether s contains at least one letter.
func HasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// HasNumber reports whether s contains at least one decimal digit.
func HasNumber(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// StrongPassword reports whether s is at least minLen characters long and
// mixes letters and digits.
func StrongPassword(s string, minLen int) bool {
	return utf8.RuneCountInString(s) >= minLen && HasLetter(s) && HasNumber(s)
}
