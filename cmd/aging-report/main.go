package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourtrade2023/inventory-aging-app/internal/config"
	"github.com/yourtrade2023/inventory-aging-app/internal/infrastructure"
	"github.com/yourtrade2023/inventory-aging-app/internal/ingest"
	"github.com/yourtrade2023/inventory-aging-app/internal/services"
	"github.com/yourtrade2023/inventory-aging-app/internal/slack"
)

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func main() {
	var listingPaths multiFlag
	inventoryPath := flag.String("inventory", "", "path to the warehouse inventory export (.xlsx)")
	flag.Var(&listingPaths, "listings", "path to a Shopee listing export (.xlsx); repeatable")
	outDir := flag.String("out", "", "output directory for report files (defaults to the configured reports directory)")
	includeBlank := flag.Bool("include-blank-key7", false, "also include rows with a blank PICKING KEY7")
	publish := flag.Bool("publish", false, "send the workbook to the configured Slack channel")
	flag.Parse()

	if *inventoryPath == "" {
		fmt.Fprintln(os.Stderr, "usage: aging-report -inventory <file.xlsx> [-listings <file.xlsx>]... [-out <dir>] [-include-blank-key7] [-publish]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *outDir == "" {
		*outDir = cfg.Reports.OutputDir
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Error("Failed to create output directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	inventory, err := os.Open(*inventoryPath)
	if err != nil {
		logger.Error("Failed to open inventory export", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer inventory.Close()

	var listings []ingest.ListingSource
	for _, path := range listingPaths {
		f, err := os.Open(path)
		if err != nil {
			logger.Error("Failed to open listing export",
				slog.String("path", path),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		listings = append(listings, ingest.ListingSource{Name: filepath.Base(path), Reader: f})
	}

	var publisher services.ReportPublisher
	if cfg.Slack.Enabled() {
		publisher = slack.NewClient(logger, cfg.Slack.BotToken, cfg.Slack.ChannelID)
	}

	service := services.NewAnalysisService(logger, publisher)

	ctx := context.Background()
	snapshot, err := service.Run(ctx, services.RunInput{
		Inventory:              inventory,
		Listings:               listings,
		IncludeBlankRoutingKey: *includeBlank,
	})
	if err != nil {
		logger.Error("Analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dateTag := snapshot.GeneratedAt.Format("20060102")
	xlsxPath := filepath.Join(*outDir, fmt.Sprintf("在庫Aging分析_%s.xlsx", dateTag))
	csvPath := filepath.Join(*outDir, fmt.Sprintf("在庫Aging分析_%s.csv", dateTag))

	if err := os.WriteFile(xlsxPath, snapshot.Workbook, 0644); err != nil {
		logger.Error("Failed to write workbook", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := os.WriteFile(csvPath, snapshot.CSV, 0644); err != nil {
		logger.Error("Failed to write CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Report generated",
		slog.String("workbook", xlsxPath),
		slog.String("csv", csvPath),
		slog.Int("products", len(snapshot.Products)),
		slog.Int("expiry_warnings", snapshot.Summary.ExpiryWarnCount),
		slog.Int("b2b_candidates", snapshot.Summary.B2BCandidateCount))

	if *publish {
		ok, message := service.PublishLatest(ctx)
		if !ok {
			logger.Error("Publish failed", slog.String("message", message))
			os.Exit(1)
		}
		logger.Info("Publish succeeded", slog.String("message", message))
	}
}
