package analysis

import (
	"regexp"
	"strconv"
	"time"
)

// Storage location codes carry the best-before date as a trailing 6-digit
// group behind an "S" or "SS" token, e.g. "A-12_SS_241231".
var expiryPattern = regexp.MustCompile(`SS?_(\d{6})$`)

// ParseExpiry extracts the expiry date encoded in a storage location
// code. The six digits decode as YYMMDD with the year offset to 2000.
// Codes without the marker, or with an impossible month/day, yield no
// expiry rather than an error.
func ParseExpiry(subInventory string) (time.Time, bool) {
	m := expiryPattern.FindStringSubmatch(subInventory)
	if m == nil {
		return time.Time{}, false
	}
	digits := m[1]
	yy, _ := strconv.Atoi(digits[:2])
	mm, _ := strconv.Atoi(digits[2:4])
	dd, _ := strconv.Atoi(digits[4:6])

	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return time.Time{}, false
	}
	d := time.Date(2000+yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. Feb 30 -> Mar 2), which would
	// silently accept an invalid day.
	if d.Year() != 2000+yy || int(d.Month()) != mm || d.Day() != dd {
		return time.Time{}, false
	}
	return d, true
}
