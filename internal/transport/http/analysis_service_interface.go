package http

import (
	"context"

	"github.com/yourtrade2023/inventory-aging-app/internal/services"
)

// AnalysisServiceInterface defines the service operations the handlers
// depend on. Kept small so tests can substitute a fake.
type AnalysisServiceInterface interface {
	Run(ctx context.Context, input services.RunInput) (*services.Snapshot, error)
	Latest() (*services.Snapshot, bool)
	PublishLatest(ctx context.Context) (bool, string)
}
