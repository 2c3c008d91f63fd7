package report

import (
	"math"
	"time"

	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

// StyleDirective is the row-level visual encoding decided by the model
// builder. The serializer maps each directive to a concrete fill; the
// decision itself never depends on the output format.
type StyleDirective string

const (
	StyleDefault    StyleDirective = ""
	StyleListed     StyleDirective = "listed"
	StyleExpired    StyleDirective = "expired"
	StyleNearExpiry StyleDirective = "near_expiry"
	StyleFresh      StyleDirective = "fresh" // dwell <= 60 days
	StyleWatch      StyleDirective = "watch" // dwell <= 180 days
	StyleStale      StyleDirective = "stale" // dwell > 180 days
)

// Row pairs an aggregated product with its style directive.
type Row struct {
	Product domain.AggregatedProduct
	Style   StyleDirective
}

// View is a named, filtered projection of the aggregated products. An
// empty view is rendered as its placeholder line instead of a bare table.
type View struct {
	SheetName   string
	Rows        []Row
	Placeholder string
}

// BucketSummaryRow is one line of the per-bucket summary table.
type BucketSummaryRow struct {
	Bucket          domain.AgingBucket
	SKUCount        int
	ListedCount     int
	TotalPieceQty   float64
	ExpiryWarnCount int
	SharePercent    float64 // share of total SKU count, 1 decimal
}

// Model is the complete report: KPI headline, per-bucket summary and the
// three detail projections. Built freshly per render from one immutable
// product collection.
type Model struct {
	GeneratedAt time.Time
	Summary     domain.AnalysisSummary
	BucketRows  []BucketSummaryRow
	Detail      View
	ExpiryRisk  View
	B2B         View
}

// Sheet names of the rendered workbook.
const (
	SheetSummary    = "サマリ"
	SheetDetail     = "商品別Aging明細"
	SheetExpiryRisk = "期限注意リスト"
	SheetB2B        = "B2B候補_Shopee未掲載"
)

const (
	placeholderExpiry = "期限注意の商品はありません。"
	placeholderB2B    = "B2B候補（Shopee未掲載）の商品はありません。"
)

// BuildModel derives the four report views from one aggregated product
// collection. Row order follows the input (dwell-time descending).
func BuildModel(products []domain.AggregatedProduct, summary domain.AnalysisSummary, generatedAt time.Time) *Model {
	m := &Model{
		GeneratedAt: generatedAt,
		Summary:     summary,
		Detail:      View{SheetName: SheetDetail},
		ExpiryRisk:  View{SheetName: SheetExpiryRisk, Placeholder: placeholderExpiry},
		B2B:         View{SheetName: SheetB2B, Placeholder: placeholderB2B},
	}

	buckets := make(map[domain.AgingBucket]*BucketSummaryRow)
	for _, p := range products {
		row := Row{Product: p, Style: styleFor(p)}
		m.Detail.Rows = append(m.Detail.Rows, row)
		if p.ExpiryAtRisk() {
			m.ExpiryRisk.Rows = append(m.ExpiryRisk.Rows, row)
		}
		if p.B2BCandidate && !p.Listed {
			m.B2B.Rows = append(m.B2B.Rows, row)
		}

		b, ok := buckets[p.AgingBucket]
		if !ok {
			b = &BucketSummaryRow{Bucket: p.AgingBucket}
			buckets[p.AgingBucket] = b
		}
		b.SKUCount++
		b.TotalPieceQty += p.TotalPieceQty
		if p.Listed {
			b.ListedCount++
		}
		if p.ExpiryAtRisk() {
			b.ExpiryWarnCount++
		}
	}

	total := len(products)
	for _, bucket := range domain.AgingBucketOrder {
		b, ok := buckets[bucket]
		if !ok {
			continue
		}
		b.SharePercent = roundShare(b.SKUCount, total)
		m.BucketRows = append(m.BucketRows, *b)
	}

	return m
}

// styleFor picks the row directive. Listing status dominates; within
// unlisted rows expiry risk outranks the dwell-based progression.
func styleFor(p domain.AggregatedProduct) StyleDirective {
	if p.Listed {
		return StyleListed
	}
	switch p.ExpiryStatus {
	case domain.ExpiryStatusExpired:
		return StyleExpired
	case domain.ExpiryStatusNearExpiry:
		return StyleNearExpiry
	}
	switch {
	case p.DwellDays <= 60:
		return StyleFresh
	case p.DwellDays <= 180:
		return StyleWatch
	default:
		return StyleStale
	}
}

// roundShare computes count/total as a percentage rounded to 1 decimal.
// Shares over all buckets need not sum to exactly 100.
func roundShare(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}
