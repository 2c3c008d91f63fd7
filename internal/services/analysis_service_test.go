package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/yourtrade2023/inventory-aging-app/internal/errors"
	"github.com/yourtrade2023/inventory-aging-app/internal/ingest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildWorkbook(t *testing.T, rows [][]interface{}) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func inventoryFixture(t *testing.T) io.Reader {
	return buildWorkbook(t, [][]interface{}{
		{"Product Code", "Product Name", "PICKING KEY1", "PICKING KEY7", "Sub Inventory", "Arrival Date", "Total Piece Qty", "Case Qty", "Total Weight", "Total Volume"},
		{"P-100", "ほうじ茶ラテ", "SKU-P100", "EC", "SS_271231", "2025-01-10", "12", "1", "3.5", "0.02"},
		{"P-100", "ほうじ茶ラテ", "SKU-P100", "EC", "SS_271231", "2025-03-01", "6", "1", "1.8", "0.01"},
		{"P-200", "抹茶クッキー", "SKU-P200", "XX", "A_000000", "2025-02-01", "4", "1", "1.0", "0.01"},
	})
}

func listingFixture(t *testing.T) ingest.ListingSource {
	return ingest.ListingSource{
		Name: "listings.xlsx",
		Reader: buildWorkbook(t, [][]interface{}{
			{"カタログ情報"},
			{""},
			{""},
			{"900001", "ほうじ茶ラテ", "", "", "", "SKU-P100", "980", "4900000000001", "30", "1", ""},
		}),
	}
}

type fakePublisher struct {
	called   bool
	filename string
	comment  string
	ok       bool
	message  string
}

func (f *fakePublisher) Publish(ctx context.Context, content []byte, filename, comment string) (bool, string) {
	f.called = true
	f.filename = filename
	f.comment = comment
	return f.ok, f.message
}

func TestAnalysisService_Run(t *testing.T) {
	svc := NewAnalysisService(testLogger(), nil)

	snapshot, err := svc.Run(context.Background(), RunInput{
		Inventory: inventoryFixture(t),
		Listings:  []ingest.ListingSource{listingFixture(t)},
	})
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	require.Len(t, snapshot.Products, 1)
	p := snapshot.Products[0]
	assert.Equal(t, "P-100", p.ProductCode)
	assert.True(t, p.Listed)
	assert.InDelta(t, 18.0, p.TotalPieceQty, 0.001)

	assert.NotEmpty(t, snapshot.RunID)
	assert.Equal(t, snapshot.RunID, snapshot.Summary.RunID)
	assert.Equal(t, 1, snapshot.Summary.TotalSKUs)
	assert.NotEmpty(t, snapshot.Workbook)
	assert.True(t, bytes.HasPrefix(snapshot.CSV, []byte{0xEF, 0xBB, 0xBF}))

	latest, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, snapshot.RunID, latest.RunID)
}

func TestAnalysisService_Run_FreshReferenceDatePerRun(t *testing.T) {
	svc := NewAnalysisService(testLogger(), nil)

	clock := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.AddDate(0, 0, 3)
		return clock
	}

	first, err := svc.Run(context.Background(), RunInput{Inventory: inventoryFixture(t)})
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), RunInput{Inventory: inventoryFixture(t)})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), first.GeneratedAt)
	assert.Equal(t, time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC), second.GeneratedAt)

	// Dwell-time follows each run's own reference date (arrival 2025-01-10).
	assert.Equal(t, 145, first.Products[0].DwellDays)
	assert.Equal(t, 148, second.Products[0].DwellDays)
}

func TestAnalysisService_Run_NoChannelRows(t *testing.T) {
	svc := NewAnalysisService(testLogger(), nil)

	inventory := buildWorkbook(t, [][]interface{}{
		{"Product Code", "PICKING KEY7", "Arrival Date", "Sub Inventory"},
		{"P-300", "XX", "2025-01-01", ""},
	})

	_, err := svc.Run(context.Background(), RunInput{Inventory: inventory})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoRecords)

	_, ok := svc.Latest()
	assert.False(t, ok)
}

func TestAnalysisService_PublishLatest(t *testing.T) {
	pub := &fakePublisher{ok: true, message: "送信しました"}
	svc := NewAnalysisService(testLogger(), pub)

	ok, message := svc.PublishLatest(context.Background())
	assert.False(t, ok)
	assert.Contains(t, message, "分析結果がありません")
	assert.False(t, pub.called)

	_, err := svc.Run(context.Background(), RunInput{Inventory: inventoryFixture(t)})
	require.NoError(t, err)

	ok, message = svc.PublishLatest(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "送信しました", message)
	assert.True(t, pub.called)
	assert.Contains(t, pub.filename, "aging_report_")
	assert.Contains(t, pub.comment, "全SKU数")
}

func TestAnalysisService_PublishLatest_NoPublisher(t *testing.T) {
	svc := NewAnalysisService(testLogger(), nil)

	_, err := svc.Run(context.Background(), RunInput{Inventory: inventoryFixture(t)})
	require.NoError(t, err)

	ok, message := svc.PublishLatest(context.Background())
	assert.False(t, ok)
	assert.Contains(t, message, "設定されていません")
}
