package ports

import (
	"context"

	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishEvaluation(ctx context.Context, ev *domain.Evaluation) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeEvaluations(ctx context.Context, handler func(ctx context.Context, ev *domain.Evaluation) error) error
}

// CacheService provides key-value caching with TTLs.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}
