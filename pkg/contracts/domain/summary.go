package domain

import (
	"time"
)

// BucketCount pairs an aging bucket with its product count.
type BucketCount struct {
	Bucket AgingBucket `json:"bucket"`
	Count  int         `json:"count"`
}

// AnalysisSummary represents the KPI headline of one analysis run.
type AnalysisSummary struct {
	RunID             string        `json:"run_id"`
	GeneratedAt       time.Time     `json:"generated_at"`
	TotalSKUs         int           `json:"total_skus"`
	ListedCount       int           `json:"listed_count"`
	ExpiryWarnCount   int           `json:"expiry_warn_count"`
	B2BCandidateCount int           `json:"b2b_candidate_count"`
	BucketCounts      []BucketCount `json:"bucket_counts"`
}

// Summarize computes the KPI headline for a set of aggregated products.
// Only buckets that actually occur are included, in report order.
func Summarize(products []AggregatedProduct) AnalysisSummary {
	s := AnalysisSummary{TotalSKUs: len(products)}
	byBucket := make(map[AgingBucket]int)
	for _, p := range products {
		if p.Listed {
			s.ListedCount++
		}
		if p.ExpiryAtRisk() {
			s.ExpiryWarnCount++
		}
		if p.B2BCandidate {
			s.B2BCandidateCount++
		}
		byBucket[p.AgingBucket]++
	}
	for _, b := range AgingBucketOrder {
		if n := byBucket[b]; n > 0 {
			s.BucketCounts = append(s.BucketCounts, BucketCount{Bucket: b, Count: n})
		}
	}
	return s
}
