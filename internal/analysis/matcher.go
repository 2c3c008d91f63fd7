package analysis

import (
	"strings"

	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

// IdentitySets holds the lookup sets derived from the Shopee catalog.
// Built once per run and read-only for the duration of matching.
type IdentitySets struct {
	SKUs     map[string]struct{}
	GTINs    map[string]struct{}
	Barcodes map[string]struct{}
}

// BuildIdentitySets derives the three lookup sets from the marketplace
// listings. A compound SKU of the form "PREFIX_<barcode>_SUFFIX" (three or
// more underscore segments) contributes its middle segments as a barcode
// candidate, both as-is and with leading zeros stripped.
func BuildIdentitySets(listings []domain.ListingRecord) *IdentitySets {
	sets := &IdentitySets{
		SKUs:     make(map[string]struct{}),
		GTINs:    make(map[string]struct{}),
		Barcodes: make(map[string]struct{}),
	}
	for _, l := range listings {
		if sku := strings.TrimSpace(l.SKU); sku != "" {
			sets.SKUs[sku] = struct{}{}
		}
		if gtin := strings.TrimSpace(l.GTIN); gtin != "" {
			sets.GTINs[gtin] = struct{}{}
		}
	}
	for sku := range sets.SKUs {
		parts := strings.Split(sku, "_")
		if len(parts) >= 3 {
			barcode := strings.Join(parts[1:len(parts)-1], "_")
			sets.Barcodes[barcode] = struct{}{}
			sets.Barcodes[stripLeadingZeros(barcode)] = struct{}{}
		}
	}
	return sets
}

// IsListed decides whether an inventory record is currently listed on
// Shopee. Matching is exact string equality after trimming, tried in
// order: picking key against the SKU set, product code against the GTIN
// set, then product code (with and without leading zeros) against the
// barcode set. Blank fields never match.
func (s *IdentitySets) IsListed(rec domain.InventoryRecord) bool {
	if s == nil {
		return false
	}
	pk1 := strings.TrimSpace(rec.PickingKey1)
	code := strings.TrimSpace(rec.ProductCode)

	if pk1 != "" {
		if _, ok := s.SKUs[pk1]; ok {
			return true
		}
	}
	if code == "" {
		return false
	}
	if _, ok := s.GTINs[code]; ok {
		return true
	}
	if _, ok := s.Barcodes[code]; ok {
		return true
	}
	if stripped := stripLeadingZeros(code); stripped != "" {
		if _, ok := s.Barcodes[stripped]; ok {
			return true
		}
	}
	return false
}

func stripLeadingZeros(s string) string {
	return strings.TrimLeft(s, "0")
}
