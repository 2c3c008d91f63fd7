package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourtrade2023/inventory-aging-app/internal/errors"
	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

var testToday = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testToday.AddDate(0, 0, -n)
}

func TestAnalyzer_Aggregate_GroupsByProduct(t *testing.T) {
	records := []domain.InventoryRecord{
		{ProductCode: "P1", ProductName: "抹茶クッキー", PickingKey7: "EC", ArrivalDate: daysAgo(100), TotalPieceQty: 3, CaseQty: 1, TotalWeight: 0.5, TotalVolume: 0.1},
		{ProductCode: "P1", ProductName: "抹茶クッキー", PickingKey7: "ec ", ArrivalDate: daysAgo(50), TotalPieceQty: 4, CaseQty: 2, TotalWeight: 0.7, TotalVolume: 0.2},
	}

	a := NewAnalyzer(nil, testToday)
	products, err := a.Aggregate(context.Background(), records, nil, Options{})
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "P1", p.ProductCode)
	assert.Equal(t, "抹茶クッキー", p.ProductName)
	assert.Equal(t, 2, p.ArrivalCount)
	assert.Equal(t, daysAgo(100), p.FirstArrival)
	assert.Equal(t, daysAgo(50), p.LastArrival)
	assert.InDelta(t, 7, p.TotalPieceQty, 1e-9)
	assert.InDelta(t, 3, p.TotalCaseQty, 1e-9)
	assert.False(t, p.Listed, "no listing dataset supplied")
	assert.Equal(t, 100, p.DwellDays)
	assert.Equal(t, domain.AgingBucket91To180, p.AgingBucket)
	assert.Equal(t, domain.ExpiryStatusNone, p.ExpiryStatus)
	assert.True(t, p.B2BCandidate, "dwell 100 exceeds the threshold")
}

func TestAnalyzer_Aggregate_ChannelFilter(t *testing.T) {
	records := []domain.InventoryRecord{
		{ProductCode: "KEEP", PickingKey7: " ec ", ArrivalDate: daysAgo(10)},
		{ProductCode: "DROP", PickingKey7: "XX", ArrivalDate: daysAgo(10)},
		{ProductCode: "BLANK", PickingKey7: "", ArrivalDate: daysAgo(10)},
	}
	a := NewAnalyzer(nil, testToday)

	products, err := a.Aggregate(context.Background(), records, nil, Options{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "KEEP", products[0].ProductCode)

	products, err = a.Aggregate(context.Background(), records, nil, Options{IncludeBlankRoutingKey: true})
	require.NoError(t, err)
	codes := []string{products[0].ProductCode, products[1].ProductCode}
	assert.ElementsMatch(t, []string{"KEEP", "BLANK"}, codes)
}

func TestAnalyzer_Aggregate_EmptyResult(t *testing.T) {
	records := []domain.InventoryRecord{
		{ProductCode: "DROP", PickingKey7: "XX"},
	}
	a := NewAnalyzer(nil, testToday)

	products, err := a.Aggregate(context.Background(), records, nil, Options{})
	assert.Nil(t, products)
	assert.ErrorIs(t, err, apperrors.ErrNoRecords)
}

func TestAnalyzer_Aggregate_ExpiryAndListing(t *testing.T) {
	sets := BuildIdentitySets([]domain.ListingRecord{
		{ProductID: "1", SKU: "ABC_0012345_X"},
	})
	records := []domain.InventoryRecord{
		{ProductCode: "12345", PickingKey7: "EC", ArrivalDate: daysAgo(20), SubInventory: "A1_SS_250610"},
		{ProductCode: "12345", PickingKey7: "EC", ArrivalDate: daysAgo(5), SubInventory: "A2_SS_260101"},
		{ProductCode: "99999", PickingKey7: "EC", ArrivalDate: daysAgo(400), SubInventory: "B1_SS_250101"},
	}

	a := NewAnalyzer(nil, testToday)
	products, err := a.Aggregate(context.Background(), records, sets, Options{})
	require.NoError(t, err)
	require.Len(t, products, 2)

	// Sorted by dwell-time descending.
	assert.Equal(t, "99999", products[0].ProductCode)
	assert.Equal(t, "12345", products[1].ProductCode)

	old := products[0]
	assert.False(t, old.Listed)
	assert.Equal(t, domain.AgingBucketOver365, old.AgingBucket)
	assert.Equal(t, domain.ExpiryStatusExpired, old.ExpiryStatus)
	require.NotNil(t, old.EarliestExpiry)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *old.EarliestExpiry)

	matched := products[1]
	assert.True(t, matched.Listed, "product code matches an embedded barcode")
	require.NotNil(t, matched.EarliestExpiry)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), *matched.EarliestExpiry)
	assert.Equal(t, domain.ExpiryStatusNearExpiry, matched.ExpiryStatus)
	assert.Equal(t, "2025-06-10, 2026-01-01", matched.ExpiryDates)
}

func TestAnalyzer_Aggregate_MissingArrival(t *testing.T) {
	records := []domain.InventoryRecord{
		{ProductCode: "P1", PickingKey7: "EC"},
	}
	a := NewAnalyzer(nil, testToday)

	products, err := a.Aggregate(context.Background(), records, nil, Options{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 0, products[0].DwellDays)
	assert.Equal(t, domain.AgingBucket0To30, products[0].AgingBucket)
	assert.True(t, products[0].FirstArrival.IsZero())
}

func TestAnalyzer_Aggregate_FutureArrivalClampedToZero(t *testing.T) {
	records := []domain.InventoryRecord{
		{ProductCode: "P1", PickingKey7: "EC", ArrivalDate: testToday.AddDate(0, 0, 3)},
	}
	a := NewAnalyzer(nil, testToday)

	products, err := a.Aggregate(context.Background(), records, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, products[0].DwellDays)
}
