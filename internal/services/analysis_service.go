package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourtrade2023/inventory-aging-app/internal/analysis"
	"github.com/yourtrade2023/inventory-aging-app/internal/ingest"
	"github.com/yourtrade2023/inventory-aging-app/internal/report"
	"github.com/yourtrade2023/inventory-aging-app/internal/slack"
	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

// ReportPublisher sends a finished report file plus a summary message to
// an external channel. It returns whether the delivery succeeded and a
// user-facing status message.
type ReportPublisher interface {
	Publish(ctx context.Context, content []byte, filename, comment string) (bool, string)
}

// RunInput carries the uploaded source files for one analysis run.
type RunInput struct {
	Inventory              io.Reader
	Listings               []ingest.ListingSource
	IncludeBlankRoutingKey bool
}

// Snapshot is the immutable result of one completed analysis run,
// including the rendered report artifacts.
type Snapshot struct {
	RunID       string
	GeneratedAt time.Time
	Products    []domain.AggregatedProduct
	Summary     domain.AnalysisSummary
	Workbook    []byte
	CSV         []byte
}

// AnalysisService orchestrates the full pipeline: ingest the uploads,
// aggregate and classify, render the report artifacts, and retain the
// latest snapshot for download and publishing.
type AnalysisService struct {
	logger    *slog.Logger
	renderer  *report.Renderer
	publisher ReportPublisher
	now       func() time.Time

	mu     sync.RWMutex
	latest *Snapshot
}

// NewAnalysisService creates an analysis service. The publisher may be
// nil when publishing is not configured.
func NewAnalysisService(logger *slog.Logger, publisher ReportPublisher) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		logger:    logger,
		renderer:  report.NewRenderer(logger),
		publisher: publisher,
		now:       time.Now,
	}
}

// Run executes one analysis over the supplied files and stores the
// resulting snapshot as the latest. Each run fixes its own reference
// date at start; concurrent or later runs never share it.
func (s *AnalysisService) Run(ctx context.Context, input RunInput) (*Snapshot, error) {
	start := time.Now()
	analyzer := analysis.NewAnalyzer(s.logger, s.now())

	records, err := ingest.LoadInventory(s.logger, input.Inventory)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	listings, err := ingest.LoadListings(ctx, s.logger, input.Listings)
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}

	sets := analysis.BuildIdentitySets(listings)
	products, err := analyzer.Aggregate(ctx, records, sets, analysis.Options{
		IncludeBlankRoutingKey: input.IncludeBlankRoutingKey,
	})
	if err != nil {
		return nil, err
	}

	summary := domain.Summarize(products)
	generatedAt := analyzer.Today()
	summary.GeneratedAt = generatedAt
	model := report.BuildModel(products, summary, generatedAt)

	workbook, err := s.renderer.RenderWorkbook(model)
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	csvData, err := s.renderer.RenderCSV(model)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}

	snapshot := &Snapshot{
		RunID:       uuid.New().String(),
		GeneratedAt: generatedAt,
		Products:    products,
		Summary:     summary,
		Workbook:    workbook,
		CSV:         csvData,
	}
	snapshot.Summary.RunID = snapshot.RunID

	s.mu.Lock()
	s.latest = snapshot
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "analysis run completed",
		slog.String("run_id", snapshot.RunID),
		slog.Int("inventory_rows", len(records)),
		slog.Int("listing_rows", len(listings)),
		slog.Int("products", len(products)),
		slog.String("duration", time.Since(start).String()))

	return snapshot, nil
}

// Latest returns the most recent snapshot, or false when no run has
// completed yet.
func (s *AnalysisService) Latest() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, false
	}
	return s.latest, true
}

// PublishLatest delivers the latest workbook to the configured channel.
// The returned message is user-facing and already localized.
func (s *AnalysisService) PublishLatest(ctx context.Context) (bool, string) {
	snapshot, ok := s.Latest()
	if !ok {
		return false, "分析結果がありません。先に分析を実行してください"
	}
	if s.publisher == nil {
		return false, "Slack通知が設定されていません"
	}

	filename := fmt.Sprintf("aging_report_%s.xlsx", time.Now().Format("20060102_1504"))
	comment := slack.BuildSummary(snapshot.Summary)

	ok, message := s.publisher.Publish(ctx, snapshot.Workbook, filename, comment)
	s.logger.InfoContext(ctx, "publish attempted",
		slog.String("run_id", snapshot.RunID),
		slog.Bool("ok", ok))
	return ok, message
}
