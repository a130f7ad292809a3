package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
	"github.com/lalit-0106/gps-attendance-app/internal/core/ports"
	"github.com/lalit-0106/gps-attendance-app/internal/pkg/geospatial"
	"github.com/lalit-0106/gps-attendance-app/internal/pkg/metrics"
)

// AccessService evaluates reported positions against the office geofence.
// The fence is fixed at construction; evaluation itself is a pure
// computation, so concurrent calls share no mutable state.
type AccessService struct {
	fence    domain.Geofence
	events   ports.EventPublisher
	presence *PresenceService
}

// NewAccessService creates a new AccessService. events and presence may be
// nil; the service then skips those side effects.
func NewAccessService(fence domain.Geofence, events ports.EventPublisher, presence *PresenceService) *AccessService {
	return &AccessService{fence: fence, events: events, presence: presence}
}

// Fence returns the configured geofence.
func (s *AccessService) Fence() domain.Geofence {
	return s.fence
}

// Evaluate computes the great-circle distance from pos to the office and
// decides whether clock in/out is allowed (only outside the fence). Event
// publishing and presence tracking are best-effort: a broker or cache
// outage never fails the evaluation.
func (s *AccessService) Evaluate(ctx context.Context, device string, pos domain.Coordinate) (*domain.AccessDecision, error) {
	if err := pos.Validate(); err != nil {
		return nil, err
	}
	if device == "" {
		device = "unknown"
	}

	distance := geospatial.Haversine(
		pos.Latitude, pos.Longitude,
		s.fence.Center.Latitude, s.fence.Center.Longitude,
	)

	decision := &domain.AccessDecision{
		Allowed:        !s.fence.Contains(distance),
		DistanceMeters: distance,
	}

	slog.InfoContext(ctx, "geofence check",
		"device", device,
		"latitude", pos.Latitude,
		"longitude", pos.Longitude,
		"distance_m", distance,
		"allowed", decision.Allowed,
	)
	metrics.RecordEvaluation(decision.Allowed, distance)

	ev := &domain.Evaluation{
		ID:             uuid.NewString(),
		Device:         device,
		Position:       pos,
		DistanceMeters: distance,
		Allowed:        decision.Allowed,
		EvaluatedAt:    time.Now().UTC(),
	}
	if s.events != nil {
		if err := s.events.PublishEvaluation(ctx, ev); err != nil {
			slog.WarnContext(ctx, "publish evaluation failed", "error", err)
		}
	}
	if s.presence != nil {
		if err := s.presence.Record(ctx, ev); err != nil {
			slog.WarnContext(ctx, "record presence failed", "error", err)
		}
	}

	return decision, nil
}
