package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/yourtrade2023/inventory-aging-app/internal/errors"
	"github.com/yourtrade2023/inventory-aging-app/internal/ingest"
	"github.com/yourtrade2023/inventory-aging-app/internal/services"
	"github.com/yourtrade2023/inventory-aging-app/pkg/contracts/domain"
)

// AnalysisHandler exposes the analysis pipeline over HTTP.
type AnalysisHandler struct {
	service        AnalysisServiceInterface
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewAnalysisHandler creates an analysis handler.
func NewAnalysisHandler(service AnalysisServiceInterface, logger *slog.Logger, maxUploadBytes int64) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "analysis_handler")),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.RunAnalysis)
	r.Get("/", h.GetLatest)
	r.Get("/report.xlsx", h.DownloadWorkbook)
	r.Get("/report.csv", h.DownloadCSV)
	r.Post("/publish", h.Publish)

	return r
}

// AnalysisResponse is the JSON shape of a completed run.
type AnalysisResponse struct {
	Success  bool                       `json:"success"`
	Summary  domain.AnalysisSummary     `json:"summary"`
	Products []domain.AggregatedProduct `json:"products"`
}

// Render implements render.Renderer.
func (ar *AnalysisResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// PublishResponse reports the outcome of a publish attempt.
type PublishResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Render implements render.Renderer.
func (pr *PublishResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// RunAnalysis accepts a multipart upload with the warehouse inventory
// under "inventory", zero or more Shopee exports under "listings", and
// an optional "include_blank_key7" flag, then runs the full pipeline.
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.renderError(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("failed to parse multipart form: %v", err), nil))
		return
	}
	defer r.MultipartForm.RemoveAll()

	inventoryFile, _, err := r.FormFile("inventory")
	if err != nil {
		h.renderError(w, r, apierrors.New(http.StatusBadRequest, "INVALID_REQUEST",
			"inventory file is required"))
		return
	}
	defer inventoryFile.Close()

	var listings []ingest.ListingSource
	for _, header := range r.MultipartForm.File["listings"] {
		file, err := header.Open()
		if err != nil {
			h.renderError(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST",
				fmt.Sprintf("failed to open listing file %q: %v", header.Filename, err), nil))
			return
		}
		defer file.Close()
		listings = append(listings, ingest.ListingSource{Name: header.Filename, Reader: file})
	}

	includeBlank, _ := strconv.ParseBool(r.FormValue("include_blank_key7"))

	snapshot, err := h.service.Run(ctx, services.RunInput{
		Inventory:              inventoryFile,
		Listings:               listings,
		IncludeBlankRoutingKey: includeBlank,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "analysis run failed", slog.String("error", err.Error()))
		h.renderError(w, r, apierrors.ToAPIError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.Render(w, r, &AnalysisResponse{
		Success:  true,
		Summary:  snapshot.Summary,
		Products: snapshot.Products,
	})
}

// GetLatest returns the most recent analysis result.
func (h *AnalysisHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.service.Latest()
	if !ok {
		h.renderError(w, r, apierrors.ErrNoAnalysis)
		return
	}

	render.Render(w, r, &AnalysisResponse{
		Success:  true,
		Summary:  snapshot.Summary,
		Products: snapshot.Products,
	})
}

// DownloadWorkbook streams the latest styled workbook.
func (h *AnalysisHandler) DownloadWorkbook(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.service.Latest()
	if !ok {
		h.renderError(w, r, apierrors.ErrNoAnalysis)
		return
	}

	filename := fmt.Sprintf("在庫Aging分析_%s.xlsx", snapshot.GeneratedAt.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", contentDisposition("report.xlsx", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(snapshot.Workbook)))
	w.Write(snapshot.Workbook)
}

// DownloadCSV streams the latest detail table as CSV.
func (h *AnalysisHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.service.Latest()
	if !ok {
		h.renderError(w, r, apierrors.ErrNoAnalysis)
		return
	}

	filename := fmt.Sprintf("在庫Aging分析_%s.csv", snapshot.GeneratedAt.Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", contentDisposition("report.csv", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(snapshot.CSV)))
	w.Write(snapshot.CSV)
}

// Publish sends the latest workbook to the configured Slack channel.
// Delivery failures are reported in the body, not as an HTTP error.
func (h *AnalysisHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ok, message := h.service.PublishLatest(r.Context())
	render.Render(w, r, &PublishResponse{OK: ok, Message: message})
}

func (h *AnalysisHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}

// contentDisposition builds an attachment header that survives non-ASCII
// filenames (RFC 5987 filename* plus an ASCII fallback).
func contentDisposition(fallback, filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, escapeRFC5987(filename))
}

func escapeRFC5987(s string) string {
	const hex = "0123456789ABCDEF"
	var out []byte
	for _, b := range []byte(s) {
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9',
			b == '-', b == '.', b == '_', b == '~':
			out = append(out, b)
		default:
			out = append(out, '%', hex[b>>4], hex[b&0x0F])
		}
	}
	return string(out)
}
