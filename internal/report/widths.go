package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"
)

const maxColumnWidth = 50

// columnWidths tracks the widest display value seen per column so each
// sheet can be auto-sized after writing. CJK characters count double,
// matching how spreadsheet tools render them.
type columnWidths struct {
	max map[int]int
}

func newColumnWidths() *columnWidths {
	return &columnWidths{max: make(map[int]int)}
}

func (c *columnWidths) observe(col int, value interface{}) {
	w := displayWidth(displayString(value))
	if w > c.max[col] {
		c.max[col] = w
	}
}

func (c *columnWidths) apply(f *excelize.File, sheet string) {
	for col, w := range c.max {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			continue
		}
		target := float64(w + 3)
		if target > maxColumnWidth {
			target = maxColumnWidth
		}
		_ = f.SetColWidth(sheet, name, name, target)
	}
}

func displayString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func displayWidth(s string) int {
	total := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			total += 2
		default:
			total++
		}
	}
	return total
}
