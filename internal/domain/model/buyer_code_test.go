package model

import (
	"math/rand"
	"testing"
	"time"
)

func TestIsValidCodeFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want bool
	}{
		{"#AB12C", true},
		{"#abcde", true},
		{"#00000", true},
		{"#zZ9aB", true},
		{"", false},
		{"#", false},
		{"AB12C", false},       // missing marker
		{"#AB12", false},       // too short
		{"#AB12CD", false},     // too long
		{"##B12C", false},      // marker inside the body
		{"#AB 2C", false},      // whitespace
		{"#AB-2C", false},      // punctuation
		{" #AB12C", false},     // leading whitespace, anchored match
		{"#AB12C ", false},     // trailing whitespace
		{"#AB12C\n", false},    // trailing newline
		{"#AB12C#AB12C", false},
	}
	for _, tc := range cases {
		if got := IsValidCodeFormat(tc.raw); got != tc.want {
			t.Errorf("IsValidCodeFormat(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

// isValidReference checks the format byte by byte, independent of the regexp.
func isValidReference(s string) bool {
	if len(s) != 6 || s[0] != '#' {
		return false
	}
	for i := 1; i < 6; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}

func TestIsValidCodeFormatProperty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	alphabet := []byte("#abcXYZ019 -\n\t!~é")
	for i := 0; i < 5000; i++ {
		n := rng.Intn(10)
		b := make([]byte, n)
		for j := range b {
			b[j] = alphabet[rng.Intn(len(alphabet))]
		}
		// bias towards near-valid strings: half the draws get the marker
		if n > 0 && rng.Intn(2) == 0 {
			b[0] = '#'
		}
		s := string(b)
		if got, want := IsValidCodeFormat(s), isValidReference(s); got != want {
			t.Fatalf("IsValidCodeFormat(%q) = %v, reference says %v", s, got, want)
		}
	}
}

func TestBuyerCodeRedeemed(t *testing.T) {
	t.Parallel()

	c := &BuyerCode{ID: "rec-1", Code: "#AB12C"}
	if c.Redeemed() {
		t.Fatalf("fresh record must not count as redeemed")
	}

	now := time.Now()
	c.RedeemedBy = "42"
	c.RedeemedAt = &now
	if !c.Redeemed() {
		t.Fatalf("record with a redeemer must count as redeemed")
	}
}
