package analysis

import (
	"time"

	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

// Dwell-time thresholds in days. The bins are closed intervals and
// partition [0, inf) with no gaps.
var agingBins = []struct {
	lo, hi int
	bucket domain.AgingBucket
}{
	{0, 30, domain.AgingBucket0To30},
	{31, 60, domain.AgingBucket31To60},
	{61, 90, domain.AgingBucket61To90},
	{91, 180, domain.AgingBucket91To180},
	{181, 365, domain.AgingBucket181To365},
	{366, 999999, domain.AgingBucketOver365},
}

const (
	// nearExpiryWindowDays is how far ahead of the reference date an
	// expiry counts as imminent.
	nearExpiryWindowDays = 90

	// B2B disposal thresholds. Either alone qualifies a product.
	b2bDwellDays = 90
	b2bQuantity  = 10
)

// CategorizeAging maps a dwell-time in days to its aging bucket. The
// first matching bin wins; anything beyond the table falls into the
// open-ended bucket.
func CategorizeAging(days int) domain.AgingBucket {
	for _, bin := range agingBins {
		if days >= bin.lo && days <= bin.hi {
			return bin.bucket
		}
	}
	return domain.AgingBucketOver365
}

// ClassifyExpiry labels an earliest expiry date relative to the run's
// reference date. A nil expiry yields the empty status.
func ClassifyExpiry(earliest *time.Time, today time.Time) domain.ExpiryStatus {
	if earliest == nil {
		return domain.ExpiryStatusNone
	}
	if !earliest.After(today) {
		return domain.ExpiryStatusExpired
	}
	if !earliest.After(today.AddDate(0, 0, nearExpiryWindowDays)) {
		return domain.ExpiryStatusNearExpiry
	}
	return domain.ExpiryStatusHasExpiry
}

// IsB2BCandidate flags a product as suitable for bulk disposal once it
// has either dwelled 90 days or accumulated 10 pieces.
func IsB2BCandidate(dwellDays int, totalPieceQty float64) bool {
	return dwellDays >= b2bDwellDays || totalPieceQty >= b2bQuantity
}
