package slack

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

// BuildSummary formats the KPI headline of an analysis run as the
// message posted alongside the workbook. Counts carry thousands
// separators.
func BuildSummary(s domain.AnalysisSummary) string {
	p := message.NewPrinter(language.Japanese)

	var aging strings.Builder
	for _, bc := range s.BucketCounts {
		p.Fprintf(&aging, "    %s: %d SKU\n", string(bc.Bucket), bc.Count)
	}
	agingText := strings.TrimRight(aging.String(), "\n")
	if agingText == "" {
		agingText = "    データなし"
	}

	return fmt.Sprintf(
		"📦 *在庫Aging分析レポート*\n"+
			"分析日時: %s\n\n"+
			"*KPI サマリ*\n"+
			"    🏷 全SKU数: %s\n"+
			"    🛒 Shopee掲載: %s\n"+
			"    ⚠️ 期限注意: %s\n"+
			"    📦 B2B候補: %s\n\n"+
			"*📈 Aging 内訳*\n%s\n\n"+
			"_Excelファイルを添付しました。詳細はファイルをご確認ください。_",
		s.GeneratedAt.Format("2006-01-02 15:04"),
		p.Sprintf("%d", s.TotalSKUs),
		p.Sprintf("%d", s.ListedCount),
		p.Sprintf("%d", s.ExpiryWarnCount),
		p.Sprintf("%d", s.B2BCandidateCount),
		agingText,
	)
}
