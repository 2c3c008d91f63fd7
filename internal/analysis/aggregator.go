package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/yourtrade2023/inventory-aging-app/internal/errors"
	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

// ecChannelKey marks inventory rows that belong to the EC fulfillment
// channel. Comparison is case-insensitive after trimming.
const ecChannelKey = "EC"

// Options configures one aggregation run.
type Options struct {
	// IncludeBlankRoutingKey also admits rows whose PICKING KEY7 cell is
	// empty, in addition to the exact channel marker match.
	IncludeBlankRoutingKey bool
}

// Analyzer turns raw inventory movement lines into one aggregated row
// per product. Each Analyzer fixes its own reference date at
// construction so that every row of a run is classified against the
// same "today".
type Analyzer struct {
	logger *slog.Logger
	today  time.Time
}

// NewAnalyzer creates an analyzer with the given reference instant,
// truncated to a calendar date.
func NewAnalyzer(logger *slog.Logger, today time.Time) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		logger: logger,
		today:  time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// Today returns the run's fixed reference date.
func (a *Analyzer) Today() time.Time {
	return a.today
}

// Aggregate filters the inventory to the EC channel, annotates each
// surviving row with its parsed expiry and listing status, groups by
// product code and classifies each group. Output is sorted by dwell-time
// descending. A nil sets value means no listing dataset was supplied and
// every row counts as unlisted. An empty post-filter set returns
// errors.ErrNoRecords.
func (a *Analyzer) Aggregate(ctx context.Context, records []domain.InventoryRecord, sets *IdentitySets, opts Options) ([]domain.AggregatedProduct, error) {
	filtered := make([]domain.InventoryRecord, 0, len(records))
	for _, rec := range records {
		key7 := strings.ToUpper(strings.TrimSpace(rec.PickingKey7))
		if key7 == ecChannelKey || (opts.IncludeBlankRoutingKey && key7 == "") {
			filtered = append(filtered, rec)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("aggregate inventory: %w", errors.ErrNoRecords)
	}

	a.logger.InfoContext(ctx, "aggregating inventory records",
		slog.Int("input_count", len(records)),
		slog.Int("filtered_count", len(filtered)),
		slog.Bool("include_blank_routing_key", opts.IncludeBlankRoutingKey))

	type group struct {
		product     domain.AggregatedProduct
		expiryDates map[string]struct{}
	}
	groups := make(map[string]*group)
	order := make([]string, 0, len(filtered))

	for _, rec := range filtered {
		g, ok := groups[rec.ProductCode]
		if !ok {
			g = &group{
				product: domain.AggregatedProduct{
					ProductCode: rec.ProductCode,
					ProductName: rec.ProductName,
				},
				expiryDates: make(map[string]struct{}),
			}
			groups[rec.ProductCode] = g
			order = append(order, rec.ProductCode)
		}

		p := &g.product
		p.ArrivalCount++
		if !rec.ArrivalDate.IsZero() {
			if p.FirstArrival.IsZero() || rec.ArrivalDate.Before(p.FirstArrival) {
				p.FirstArrival = rec.ArrivalDate
			}
			if rec.ArrivalDate.After(p.LastArrival) {
				p.LastArrival = rec.ArrivalDate
			}
		}
		p.TotalPieceQty += rec.TotalPieceQty
		p.TotalCaseQty += rec.CaseQty
		p.TotalWeight += rec.TotalWeight
		p.TotalVolume += rec.TotalVolume

		if sets.IsListed(rec) {
			p.Listed = true
		}
		if expiry, ok := ParseExpiry(rec.SubInventory); ok {
			if p.EarliestExpiry == nil || expiry.Before(*p.EarliestExpiry) {
				e := expiry
				p.EarliestExpiry = &e
			}
			g.expiryDates[expiry.Format("2006-01-02")] = struct{}{}
		}
	}

	products := make([]domain.AggregatedProduct, 0, len(groups))
	for _, code := range order {
		g := groups[code]
		p := g.product

		dates := make([]string, 0, len(g.expiryDates))
		for d := range g.expiryDates {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		p.ExpiryDates = strings.Join(dates, ", ")

		p.DwellDays = a.dwellDays(p.FirstArrival)
		p.AgingBucket = CategorizeAging(p.DwellDays)
		p.ExpiryStatus = ClassifyExpiry(p.EarliestExpiry, a.today)
		p.B2BCandidate = IsB2BCandidate(p.DwellDays, p.TotalPieceQty)

		products = append(products, p)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].DwellDays > products[j].DwellDays
	})

	a.logger.InfoContext(ctx, "aggregation complete",
		slog.Int("product_count", len(products)),
		slog.Time("reference_date", a.today))

	return products, nil
}

// dwellDays computes whole days between the earliest arrival and the
// reference date. A missing arrival yields 0, never a negative value.
func (a *Analyzer) dwellDays(firstArrival time.Time) int {
	if firstArrival.IsZero() {
		return 0
	}
	days := int(a.today.Sub(firstArrival).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
