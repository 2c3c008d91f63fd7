package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourtrade2023/inventory-aging-app/internal/config"
	custommw "github.com/yourtrade2023/inventory-aging-app/internal/middleware"
)

// NewRouter assembles the HTTP surface: middleware chain, health check
// and the analysis API under /api/v1.
func NewRouter(cfg *config.Config, service AnalysisServiceInterface, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)

	rateLimiter := custommw.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger)
	r.Use(rateLimiter.Handler)

	analysisHandler := NewAnalysisHandler(service, logger, cfg.Server.MaxUploadBytes)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", HealthCheck)
		r.Mount("/analysis", analysisHandler.Routes())
	})

	return r
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Render implements render.Renderer.
func (hr *HealthResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// HealthCheck reports service liveness.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, &HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}
