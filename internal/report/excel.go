package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// detailHeaders is the column order shared by the detail, expiry-risk
// and B2B sheets and by the flat CSV export.
var detailHeaders = []string{
	"Product Code", "商品名", "入庫回数", "最古入庫日", "最新入庫日",
	"合計数量", "合計ケース数", "合計重量", "合計体積", "Shopee掲載",
	"最早期限日", "期限一覧", "滞留日数", "Agingカテゴリ", "期限ステータス", "B2B候補",
}

// presenceMarker renders boolean flags in sheets and CSV.
const presenceMarker = "●"

const (
	colorHeader     = "4472C4"
	colorListed     = "DAEEF3"
	colorExpired    = "FF6B6B"
	colorNearExpiry = "FFA500"
	colorFresh      = "C6EFCE"
	colorWatch      = "FFEB9C"
	colorStale      = "FFC7CE"
)

const isoDateFmt = "yyyy-mm-dd"

// Renderer serializes a report model into the styled workbook and the
// flat CSV export.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a report renderer.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// workbookStyles caches the style ids registered on one workbook. Each
// directive needs a text and a date variant because the date number
// format has to be combined with the row fill.
type workbookStyles struct {
	header  int
	title   int
	section int
	text    map[StyleDirective]int
	date    map[StyleDirective]int
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, s := range sides {
		borders = append(borders, excelize.Border{Type: s, Style: 1, Color: "000000"})
	}
	return borders
}

func fill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
}

func registerStyles(f *excelize.File) (*workbookStyles, error) {
	s := &workbookStyles{
		text: make(map[StyleDirective]int),
		date: make(map[StyleDirective]int),
	}

	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Fill:      fill(colorHeader),
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("register header style: %w", err)
	}
	s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("register title style: %w", err)
	}
	s.section, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}})
	if err != nil {
		return nil, fmt.Errorf("register section style: %w", err)
	}

	rowFills := map[StyleDirective]string{
		StyleListed:     colorListed,
		StyleExpired:    colorExpired,
		StyleNearExpiry: colorNearExpiry,
		StyleFresh:      colorFresh,
		StyleWatch:      colorWatch,
		StyleStale:      colorStale,
	}
	dateFmt := isoDateFmt
	for directive := range rowFills {
		style := excelize.Style{Fill: fill(rowFills[directive]), Border: thinBorders()}
		if directive == StyleExpired {
			style.Font = &excelize.Font{Bold: true, Color: "FFFFFF"}
		}
		if s.text[directive], err = f.NewStyle(&style); err != nil {
			return nil, fmt.Errorf("register row style %q: %w", directive, err)
		}
		dateStyle := style
		dateStyle.CustomNumFmt = &dateFmt
		if s.date[directive], err = f.NewStyle(&dateStyle); err != nil {
			return nil, fmt.Errorf("register row date style %q: %w", directive, err)
		}
	}

	// Unstyled rows still get borders.
	if s.text[StyleDefault], err = f.NewStyle(&excelize.Style{Border: thinBorders()}); err != nil {
		return nil, fmt.Errorf("register base style: %w", err)
	}
	if s.date[StyleDefault], err = f.NewStyle(&excelize.Style{Border: thinBorders(), CustomNumFmt: &dateFmt}); err != nil {
		return nil, fmt.Errorf("register base date style: %w", err)
	}

	return s, nil
}

// RenderWorkbook renders the model into a multi-sheet xlsx workbook and
// returns the serialized bytes.
func (r *Renderer) RenderWorkbook(m *Model) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := registerStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := r.writeSummarySheet(f, styles, m); err != nil {
		return nil, fmt.Errorf("write summary sheet: %w", err)
	}

	for _, view := range []View{m.Detail, m.ExpiryRisk, m.B2B} {
		if _, err := f.NewSheet(view.SheetName); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", view.SheetName, err)
		}
		if err := r.writeViewSheet(f, styles, view); err != nil {
			return nil, fmt.Errorf("write sheet %q: %w", view.SheetName, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	r.logger.Info("rendered workbook",
		slog.Int("detail_rows", len(m.Detail.Rows)),
		slog.Int("expiry_rows", len(m.ExpiryRisk.Rows)),
		slog.Int("b2b_rows", len(m.B2B.Rows)),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

func (r *Renderer) writeSummarySheet(f *excelize.File, styles *workbookStyles, m *Model) error {
	sheet := SheetSummary
	widths := newColumnWidths()
	row := 1

	title := fmt.Sprintf("在庫Aging分析サマリ（%s）", m.GeneratedAt.Format("2006-01-02"))
	if err := f.SetCellValue(sheet, cell(1, row), title); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, cell(1, row), cell(6, row)); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(1, row), styles.title); err != nil {
		return err
	}
	row += 2

	s := m.Summary
	kpiRows := [][]interface{}{
		{"全SKU数", s.TotalSKUs, "", "Shopee掲載数", s.ListedCount},
		{"期限注意数", s.ExpiryWarnCount, "", "B2B候補数", s.B2BCandidateCount},
	}
	for _, values := range kpiRows {
		if err := setRow(f, sheet, row, widths, values); err != nil {
			return err
		}
		row++
	}
	row++

	if err := f.SetCellValue(sheet, cell(1, row), "【Agingカテゴリ別集計】"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(1, row), styles.section); err != nil {
		return err
	}
	row++

	headers := []interface{}{"Agingカテゴリ", "SKU数", "Shopee掲載数", "合計数量", "期限注意", "構成比(%)"}
	if err := setRow(f, sheet, row, widths, headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(len(headers), row), styles.header); err != nil {
		return err
	}
	row++

	for _, b := range m.BucketRows {
		values := []interface{}{string(b.Bucket), b.SKUCount, b.ListedCount, b.TotalPieceQty, b.ExpiryWarnCount, b.SharePercent}
		if err := setRow(f, sheet, row, widths, values); err != nil {
			return err
		}
		row++
	}
	row++

	legend := [][]interface{}{
		{"【凡例】"},
		{"水色行", "Shopee掲載済み"},
		{"赤行", "期限切れ"},
		{"オレンジ行", "期限3ヶ月以内"},
		{"緑行", "Aging 0-60日"},
		{"黄行", "Aging 61-180日"},
		{"ピンク行", "Aging 181日超"},
	}
	for _, values := range legend {
		if err := setRow(f, sheet, row, widths, values); err != nil {
			return err
		}
		row++
	}

	widths.apply(f, sheet)
	return nil
}

func (r *Renderer) writeViewSheet(f *excelize.File, styles *workbookStyles, view View) error {
	sheet := view.SheetName

	if len(view.Rows) == 0 {
		return f.SetCellValue(sheet, "A1", view.Placeholder)
	}

	widths := newColumnWidths()
	headerCells := make([]interface{}, len(detailHeaders))
	for i, h := range detailHeaders {
		headerCells[i] = h
	}
	if err := setRow(f, sheet, 1, widths, headerCells); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell(1, 1), cell(len(detailHeaders), 1), styles.header); err != nil {
		return err
	}

	// Date columns get the ISO number format variant of the row style.
	dateCols := map[int]bool{4: true, 5: true, 11: true}

	for i, viewRow := range view.Rows {
		rowIdx := i + 2
		p := viewRow.Product
		values := []interface{}{
			p.ProductCode,
			p.ProductName,
			p.ArrivalCount,
			dateValue(p.FirstArrival),
			dateValue(p.LastArrival),
			p.TotalPieceQty,
			p.TotalCaseQty,
			p.TotalWeight,
			p.TotalVolume,
			marker(p.Listed),
			expiryValue(p.EarliestExpiry),
			p.ExpiryDates,
			p.DwellDays,
			string(p.AgingBucket),
			string(p.ExpiryStatus),
			marker(p.B2BCandidate),
		}
		if err := setRow(f, sheet, rowIdx, widths, values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(1, rowIdx), cell(len(values), rowIdx), styles.text[viewRow.Style]); err != nil {
			return err
		}
		for col := range dateCols {
			if err := f.SetCellStyle(sheet, cell(col, rowIdx), cell(col, rowIdx), styles.date[viewRow.Style]); err != nil {
				return err
			}
		}
	}

	widths.apply(f, sheet)

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.AutoFilter(sheet, fmt.Sprintf("A1:%s", cell(len(detailHeaders), len(view.Rows)+1)), nil)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func setRow(f *excelize.File, sheet string, row int, widths *columnWidths, values []interface{}) error {
	for i, v := range values {
		if err := f.SetCellValue(sheet, cell(i+1, row), v); err != nil {
			return err
		}
		widths.observe(i+1, v)
	}
	return nil
}

func marker(b bool) string {
	if b {
		return presenceMarker
	}
	return ""
}

// dateValue returns a value excelize can format as a date, or an empty
// string for missing dates.
func dateValue(t time.Time) interface{} {
	if t.IsZero() {
		return ""
	}
	return t
}

func expiryValue(t *time.Time) interface{} {
	if t == nil {
		return ""
	}
	return *t
}
