package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

// Shopee export layout: three banner rows, then data in a fixed
// positional column order with no header row.
const (
	listingBannerRows  = 3
	listingColumnCount = 11
)

// ListingSource is one Shopee export to ingest.
type ListingSource struct {
	Name   string
	Reader io.Reader
}

// LoadListings reads zero or more Shopee catalog exports and
// concatenates them in source order. Rows without a listing id are
// dropped. Files parse concurrently; the first failure cancels the rest.
func LoadListings(ctx context.Context, logger *slog.Logger, sources []ListingSource) ([]domain.ListingRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(sources) == 0 {
		return nil, nil
	}

	perSource := make([][]domain.ListingRecord, len(sources))
	g, _ := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			records, err := parseListingFile(src)
			if err != nil {
				return fmt.Errorf("listing file %q: %w", src.Name, err)
			}
			perSource[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined []domain.ListingRecord
	for _, records := range perSource {
		combined = append(combined, records...)
	}

	logger.InfoContext(ctx, "loaded listing exports",
		slog.Int("file_count", len(sources)),
		slog.Int("record_count", len(combined)))

	return combined, nil
}

func parseListingFile(src ListingSource) ([]domain.ListingRecord, error) {
	rows, err := openSheetRows(src.Reader, "listing export")
	if err != nil {
		return nil, err
	}
	if len(rows) <= listingBannerRows {
		return nil, nil
	}

	var records []domain.ListingRecord
	for _, row := range rows[listingBannerRows:] {
		get := func(idx int) string {
			if idx < len(row) && idx < listingColumnCount {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		getFloat := func(idx int) float64 {
			v, _ := strconv.ParseFloat(strings.ReplaceAll(get(idx), ",", ""), 64)
			return v
		}

		productID := get(0)
		if productID == "" {
			continue
		}
		records = append(records, domain.ListingRecord{
			ProductID:      productID,
			ProductName:    get(1),
			VariationID:    get(2),
			VariationName:  get(3),
			ParentSKU:      get(4),
			SKU:            get(5),
			Price:          getFloat(6),
			GTIN:           get(7),
			Stock:          getFloat(8),
			MinPurchaseQty: getFloat(9),
			FailReason:     get(10),
		})
	}
	return records, nil
}
