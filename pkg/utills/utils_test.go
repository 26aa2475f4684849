package utils

import "testing"

func TestStrongPassword(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"password1", true},
		{"pässwörd1", true},
		{"password", false},
		{"12345678", false},
		{"abc1", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := StrongPassword(tc.in, 8); got != tc.want {
			t.Fatalf("StrongPassword(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestHasLetterAndNumber(t *testing.T) {
	if !HasLetter("1a") || HasLetter("123") {
		t.Fatalf("HasLetter mismatch")
	}
	if !HasNumber("a1") || HasNumber("abc") {
		t.Fatalf("HasNumber mismatch")
	}
}
