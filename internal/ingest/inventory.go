package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yourtrade2023/inventory-aging-app/internal/errors"
	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

// Required columns of the warehouse inventory export. The first sheet's
// first row is the header.
var requiredInventoryColumns = []string{"Product Code", "PICKING KEY7", "Arrival Date", "Sub Inventory"}

// Arrival date formats seen across warehouse exports. Cells may also
// hold a raw Excel serial number.
var arrivalFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"1/2/2006",
}

// LoadInventory reads the warehouse inventory export. Missing required
// columns abort with an input shape error enumerating them; unparseable
// numeric and date cells degrade to their zero values and never fail the
// load.
func LoadInventory(logger *slog.Logger, r io.Reader) ([]domain.InventoryRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewStorageError("failed to open inventory export", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, errors.NewStorageError("failed to read inventory sheet", err)
	}
	if len(rows) == 0 {
		return nil, errors.NewInputShapeError("inventory export", requiredInventoryColumns)
	}

	colIndex := make(map[string]int)
	for i, name := range rows[0] {
		colIndex[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range requiredInventoryColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewInputShapeError("inventory export", missing)
	}

	records := make([]domain.InventoryRecord, 0, len(rows)-1)
	skipped := 0
	degradedArrivals := 0
	for _, row := range rows[1:] {
		getString := func(col string) string {
			if idx, ok := colIndex[col]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		getFloat := func(col string) float64 {
			s := strings.ReplaceAll(getString(col), ",", "")
			v, _ := strconv.ParseFloat(s, 64)
			return v
		}

		code := getString("Product Code")
		if code == "" {
			skipped++
			continue
		}

		arrivalRaw := getString("Arrival Date")
		arrival := parseArrival(arrivalRaw)
		if arrivalRaw != "" && arrival.IsZero() {
			degradedArrivals++
		}

		records = append(records, domain.InventoryRecord{
			ProductCode:   code,
			ProductName:   getString("Product Name"),
			PickingKey1:   getString("PICKING KEY1"),
			PickingKey7:   getString("PICKING KEY7"),
			SubInventory:  getString("Sub Inventory"),
			ArrivalDate:   arrival,
			TotalPieceQty: getFloat("Total Piece Qty"),
			CaseQty:       getFloat("Case Qty"),
			TotalWeight:   getFloat("Total Weight"),
			TotalVolume:   getFloat("Total Volume"),
		})
	}

	if degradedArrivals > 0 {
		qErr := errors.NewDataQualityError("arrival date cells degraded to zero value").
			WithContext("cell_count", degradedArrivals)
		logger.Warn("inventory data quality degraded",
			slog.String("error", qErr.Error()),
			slog.Int("cell_count", degradedArrivals))
	}

	logger.Info("loaded inventory export",
		slog.Int("record_count", len(records)),
		slog.Int("skipped_rows", skipped))

	return records, nil
}

// parseArrival coerces an arrival date cell. Blank or unrecognized
// values yield the zero time; the aggregator treats that as dwell 0.
func parseArrival(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range arrivalFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

// openSheetRows is shared by the listing loader.
func openSheetRows(r io.Reader, what string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open %s", what), err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read %s", what), err)
	}
	return rows, nil
}
