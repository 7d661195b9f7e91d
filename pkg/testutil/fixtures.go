package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixed values for deterministic tests.
var (
	TestUserID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestUserID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")

	// TestNow is a Wednesday afternoon in UTC.
	TestNow = time.Date(2024, time.March, 13, 14, 0, 0, 0, time.UTC)
)

// Amount parses s as a decimal and panics on malformed input.
func Amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// FixedClock returns a clock function pinned to t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
