package model

import "time"

// CodeLength is the fixed length of every access code. Presented strings of
// any other length are rejected before the store is consulted.
const CodeLength = 8

// Code is a single-use access code and, once redeemed, the record backing
// the session derived from it.
type Code struct {
	ID           string
	UserID       string
	Code         string // unique, compared byte-exact
	ExpiresAt    time.Time
	Tariff       string
	IsUsed       bool
	SessionID    *string // non-nil iff IsUsed
	NeedsRefresh bool
	LastUsedAt   *time.Time // set on activation
	CreatedAt    time.Time
}

// Expired reports whether the code's absolute deadline has passed. The
// deadline is fixed at creation; activation does not extend it.
func (c *Code) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// Remaining returns the time left until the deadline, truncated to whole
// seconds and never negative.
func (c *Code) Remaining(now time.Time) time.Duration {
	d := c.ExpiresAt.Sub(now).Truncate(time.Second)
	if d < 0 {
		return 0
	}
	return d
}
