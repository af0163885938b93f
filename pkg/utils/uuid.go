package utils

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// GenerateQuoteNo builds a display number "Q" + YYYY + MM + a random
// suffix of the given width. Numbers are labels, not keys: collisions are
// possible and never checked.
func GenerateQuoteNo(now time.Time, digits int) string {
	if digits < 1 {
		digits = 1
	}
	limit := 1
	for i := 0; i < digits; i++ {
		limit *= 10
	}
	return fmt.Sprintf("Q%04d%02d%0*d", now.Year(), int(now.Month()), digits, rand.IntN(limit))
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
