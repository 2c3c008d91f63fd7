package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

func testListings() []domain.ListingRecord {
	return []domain.ListingRecord{
		{ProductID: "1", SKU: "ABC_0012345_X", GTIN: "4901234567890"},
		{ProductID: "2", SKU: "PLAIN-SKU", GTIN: " 4987654321098 "},
		{ProductID: "3", SKU: "  JP_777_888_Z  "},
	}
}

func TestBuildIdentitySets(t *testing.T) {
	sets := BuildIdentitySets(testListings())

	assert.Contains(t, sets.SKUs, "ABC_0012345_X")
	assert.Contains(t, sets.SKUs, "PLAIN-SKU")
	assert.Contains(t, sets.SKUs, "JP_777_888_Z", "SKU values are trimmed")

	assert.Contains(t, sets.GTINs, "4901234567890")
	assert.Contains(t, sets.GTINs, "4987654321098", "GTIN values are trimmed")

	// Middle segments of a 3+ segment SKU become barcode candidates,
	// with and without leading zeros.
	assert.Contains(t, sets.Barcodes, "0012345")
	assert.Contains(t, sets.Barcodes, "12345")
	assert.Contains(t, sets.Barcodes, "777_888")

	// Two-segment SKUs contribute no barcode.
	assert.NotContains(t, sets.Barcodes, "PLAIN-SKU")
}

func TestIdentitySets_IsListed(t *testing.T) {
	sets := BuildIdentitySets(testListings())

	tests := []struct {
		name string
		rec  domain.InventoryRecord
		want bool
	}{
		{
			name: "picking key matches SKU",
			rec:  domain.InventoryRecord{PickingKey1: "ABC_0012345_X"},
			want: true,
		},
		{
			name: "picking key matches after trim",
			rec:  domain.InventoryRecord{PickingKey1: " PLAIN-SKU "},
			want: true,
		},
		{
			name: "product code matches GTIN",
			rec:  domain.InventoryRecord{ProductCode: "4901234567890"},
			want: true,
		},
		{
			name: "product code matches embedded barcode",
			rec:  domain.InventoryRecord{ProductCode: "0012345"},
			want: true,
		},
		{
			name: "zero-stripped product code matches barcode",
			rec:  domain.InventoryRecord{ProductCode: "12345"},
			want: true,
		},
		{
			name: "product code with extra leading zeros matches",
			rec:  domain.InventoryRecord{ProductCode: "00012345"},
			want: true,
		},
		{
			name: "no match anywhere",
			rec:  domain.InventoryRecord{PickingKey1: "OTHER", ProductCode: "999"},
			want: false,
		},
		{
			name: "blank fields never match",
			rec:  domain.InventoryRecord{PickingKey1: "  ", ProductCode: ""},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sets.IsListed(tt.rec))
			// Matching is a pure function of (record, sets).
			assert.Equal(t, tt.want, sets.IsListed(tt.rec))
		})
	}
}

func TestIdentitySets_NilNeverMatches(t *testing.T) {
	var sets *IdentitySets
	assert.False(t, sets.IsListed(domain.InventoryRecord{ProductCode: "12345"}))
}
