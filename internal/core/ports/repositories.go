package ports

import (
	"context"

	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
)

// EvaluationLogRepository persists the diagnostic log of geofence checks.
type EvaluationLogRepository interface {
	Insert(ctx context.Context, ev *domain.Evaluation) error
	ListRecent(ctx context.Context, limit int) ([]domain.Evaluation, error)
}
