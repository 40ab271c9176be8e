package model

import (
	"regexp"
	"time"
)

// BuyerCode represents one redeemable purchase record in the external store.
// Records are created and populated outside the bot (see cmd/seed for the
// operator tool); the bot only reads them and writes RedeemedBy exactly once.
type BuyerCode struct {
	ID         string
	Code       string
	RedeemedBy string // empty = unredeemed, otherwise the redeemer's Telegram user id
	RedeemedAt *time.Time
	Note       string // free-form operator metadata, opaque to the bot
	CreatedAt  time.Time
}

// Redeemed reports whether the record has already been consumed.
func (c *BuyerCode) Redeemed() bool { return c.RedeemedBy != "" }

// codeFormat matches the printed code format: '#' followed by exactly five
// alphanumeric characters, e.g. "#A1B2C". Anchored, no whitespace tolerance.
var codeFormat = regexp.MustCompile(`^#[A-Za-z0-9]{5}$`)

// IsValidCodeFormat reports whether raw looks like a buyer code. Purely
// syntactic, no side effects.
func IsValidCodeFormat(raw string) bool {
	return codeFormat.MatchString(raw)
}
