package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

func TestCategorizeAging(t *testing.T) {
	tests := []struct {
		days int
		want domain.AgingBucket
	}{
		{0, domain.AgingBucket0To30},
		{15, domain.AgingBucket0To30},
		{30, domain.AgingBucket0To30},
		{31, domain.AgingBucket31To60},
		{60, domain.AgingBucket31To60},
		{61, domain.AgingBucket61To90},
		{90, domain.AgingBucket61To90},
		{91, domain.AgingBucket91To180},
		{180, domain.AgingBucket91To180},
		{181, domain.AgingBucket181To365},
		{365, domain.AgingBucket181To365},
		{366, domain.AgingBucketOver365},
		{10000, domain.AgingBucketOver365},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeAging(tt.days), "days=%d", tt.days)
	}
}

func TestCategorizeAging_PartitionsDays(t *testing.T) {
	// Every non-negative dwell-time lands in exactly one bucket and
	// bucket transitions only happen at the defined boundaries.
	prev := CategorizeAging(0)
	transitions := 0
	for d := 1; d <= 400; d++ {
		cur := CategorizeAging(d)
		assert.NotEmpty(t, cur)
		if cur != prev {
			transitions++
			prev = cur
		}
	}
	assert.Equal(t, 5, transitions)
}

func TestClassifyExpiry(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	date := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name     string
		earliest *time.Time
		want     domain.ExpiryStatus
	}{
		{"no expiry", nil, domain.ExpiryStatusNone},
		{"well in the past", date(2024, 1, 1), domain.ExpiryStatusExpired},
		{"exactly today", date(2025, 6, 1), domain.ExpiryStatusExpired},
		{"tomorrow", date(2025, 6, 2), domain.ExpiryStatusNearExpiry},
		{"exactly 90 days out", date(2025, 8, 30), domain.ExpiryStatusNearExpiry},
		{"91 days out", date(2025, 8, 31), domain.ExpiryStatusHasExpiry},
		{"next year", date(2026, 6, 1), domain.ExpiryStatusHasExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyExpiry(tt.earliest, today))
		})
	}
}

func TestIsB2BCandidate(t *testing.T) {
	tests := []struct {
		name string
		days int
		qty  float64
		want bool
	}{
		{"dwell threshold alone", 90, 0, true},
		{"quantity threshold alone", 0, 10, true},
		{"both thresholds", 120, 50, true},
		{"neither threshold", 89, 9, false},
		{"fresh and empty", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsB2BCandidate(tt.days, tt.qty))
		})
	}
}
