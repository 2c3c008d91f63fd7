package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// utf8BOM makes spreadsheet tools decode the export as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RenderCSV renders the detail view as a flat delimited export. Dates
// become ISO calendar strings or empty, boolean flags become the
// presence marker or blank.
func (r *Renderer) RenderCSV(m *Model) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(detailHeaders); err != nil {
		return nil, fmt.Errorf("write CSV header: %w", err)
	}

	for _, row := range m.Detail.Rows {
		p := row.Product
		record := []string{
			p.ProductCode,
			p.ProductName,
			strconv.Itoa(p.ArrivalCount),
			csvDate(p.FirstArrival),
			csvDate(p.LastArrival),
			csvFloat(p.TotalPieceQty),
			csvFloat(p.TotalCaseQty),
			csvFloat(p.TotalWeight),
			csvFloat(p.TotalVolume),
			marker(p.Listed),
			csvOptionalDate(p.EarliestExpiry),
			p.ExpiryDates,
			strconv.Itoa(p.DwellDays),
			string(p.AgingBucket),
			string(p.ExpiryStatus),
			marker(p.B2BCandidate),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write CSV row for %s: %w", p.ProductCode, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush CSV: %w", err)
	}

	r.logger.Info("rendered CSV export",
		slog.Int("rows", len(m.Detail.Rows)),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

func csvDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func csvOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func csvFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
