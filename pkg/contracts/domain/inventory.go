package domain

import (
	"time"
)

// InventoryRecord represents one warehouse movement line from the
// inventory export. Records are materialized once per analysis run and
// discarded after aggregation.
type InventoryRecord struct {
	ProductCode  string    `json:"product_code"`
	ProductName  string    `json:"product_name"`
	PickingKey1  string    `json:"picking_key1"`  // marketplace-side compound SKU
	PickingKey7  string    `json:"picking_key7"`  // fulfillment channel routing key
	SubInventory string    `json:"sub_inventory"` // storage location code, may encode an expiry date
	ArrivalDate  time.Time `json:"arrival_date"`  // zero value when the export cell was blank or unparseable

	TotalPieceQty float64 `json:"total_piece_qty"`
	CaseQty       float64 `json:"case_qty"`
	TotalWeight   float64 `json:"total_weight"`
	TotalVolume   float64 `json:"total_volume"`
}

// ListingRecord represents one Shopee catalog line. Only the identity
// fields (ProductID, SKU, GTIN) are consumed by the matcher; the rest is
// carried for completeness of the export contract.
type ListingRecord struct {
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name"`
	VariationID    string  `json:"variation_id"`
	VariationName  string  `json:"variation_name"`
	ParentSKU      string  `json:"parent_sku"`
	SKU            string  `json:"sku"`
	Price          float64 `json:"price"`
	GTIN           string  `json:"gtin"`
	Stock          float64 `json:"stock"`
	MinPurchaseQty float64 `json:"min_purchase_qty"`
	FailReason     string  `json:"fail_reason,omitempty"`
}

// AggregatedProduct represents one analysis result row per distinct
// product code. It is immutable once produced and feeds every report view.
type AggregatedProduct struct {
	ProductCode    string       `json:"product_code"`
	ProductName    string       `json:"product_name"`
	ArrivalCount   int          `json:"arrival_count"`
	FirstArrival   time.Time    `json:"first_arrival"`
	LastArrival    time.Time    `json:"last_arrival"`
	TotalPieceQty  float64      `json:"total_piece_qty"`
	TotalCaseQty   float64      `json:"total_case_qty"`
	TotalWeight    float64      `json:"total_weight"`
	TotalVolume    float64      `json:"total_volume"`
	Listed         bool         `json:"listed"` // at least one movement matched a Shopee listing
	EarliestExpiry *time.Time   `json:"earliest_expiry,omitempty"`
	ExpiryDates    string       `json:"expiry_dates"` // sorted unique ISO dates, comma separated
	DwellDays      int          `json:"dwell_days"`   // whole days, never negative
	AgingBucket    AgingBucket  `json:"aging_bucket"`
	ExpiryStatus   ExpiryStatus `json:"expiry_status"`
	B2BCandidate   bool         `json:"b2b_candidate"`
}

// ExpiryAtRisk reports whether the product's earliest expiry is imminent
// or already passed.
func (p AggregatedProduct) ExpiryAtRisk() bool {
	return p.ExpiryStatus == ExpiryStatusExpired || p.ExpiryStatus == ExpiryStatusNearExpiry
}
