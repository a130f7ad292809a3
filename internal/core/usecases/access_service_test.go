package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
	"github.com/lalit-0106/gps-attendance-app/internal/core/usecases"
	"github.com/lalit-0106/gps-attendance-app/internal/pkg/geospatial"
)

// --- Mock EventPublisher ---

type mockPublisher struct {
	publishFn func(ctx context.Context, ev *domain.Evaluation) error
}

func (m *mockPublisher) PublishEvaluation(ctx context.Context, ev *domain.Evaluation) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, ev)
	}
	return nil
}

// --- Tests ---

func testFence() domain.Geofence {
	return domain.Geofence{
		OfficeName:   "Phoenix Equinix Office",
		Center:       domain.Coordinate{Latitude: 17.436923, Longitude: 78.373906},
		RadiusMeters: 150,
	}
}

func TestAccessService_Evaluate_OutsideFence(t *testing.T) {
	svc := usecases.NewAccessService(testFence(), nil, nil)

	// 0.002 degrees north is roughly 222m away, well past the 150m radius.
	pos := domain.Coordinate{Latitude: 17.436923 + 0.002, Longitude: 78.373906}
	decision, err := svc.Evaluate(context.Background(), "laptop-1", pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Error("expected allowed outside the fence")
	}
	if math.Abs(decision.DistanceMeters-222.39) > 1 {
		t.Errorf("expected ~222m, got %f", decision.DistanceMeters)
	}
}

func TestAccessService_Evaluate_AtOffice(t *testing.T) {
	fence := domain.Geofence{
		Center:       domain.Coordinate{Latitude: 17.437391, Longitude: 78.374825},
		RadiusMeters: 100,
	}
	svc := usecases.NewAccessService(fence, nil, nil)

	decision, err := svc.Evaluate(context.Background(), "laptop-1", fence.Center)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed {
		t.Error("expected denied at the office itself")
	}
	if decision.DistanceMeters != 0 {
		t.Errorf("expected distance 0, got %f", decision.DistanceMeters)
	}
}

func TestAccessService_Evaluate_BoundaryDenied(t *testing.T) {
	fence := testFence()
	lat, lon := geospatial.Destination(fence.Center.Latitude, fence.Center.Longitude, 45, 150)
	pos := domain.Coordinate{Latitude: lat, Longitude: lon}

	// Pin the radius to the exact computed distance so the comparison is
	// distance > distance, which must be false.
	d := geospatial.Haversine(pos.Latitude, pos.Longitude, fence.Center.Latitude, fence.Center.Longitude)
	fence.RadiusMeters = d

	svc := usecases.NewAccessService(fence, nil, nil)
	decision, err := svc.Evaluate(context.Background(), "laptop-1", pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed {
		t.Error("expected denied exactly at the boundary")
	}
}

func TestAccessService_Evaluate_JustPastBoundary(t *testing.T) {
	fence := testFence()
	lat, lon := geospatial.Destination(fence.Center.Latitude, fence.Center.Longitude, 210, 150)
	pos := domain.Coordinate{Latitude: lat, Longitude: lon}

	d := geospatial.Haversine(pos.Latitude, pos.Longitude, fence.Center.Latitude, fence.Center.Longitude)
	fence.RadiusMeters = d - 0.001

	svc := usecases.NewAccessService(fence, nil, nil)
	decision, err := svc.Evaluate(context.Background(), "laptop-1", pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Error("expected allowed just past the boundary")
	}
}

func TestAccessService_Evaluate_InvalidLatitude(t *testing.T) {
	svc := usecases.NewAccessService(testFence(), nil, nil)

	_, err := svc.Evaluate(context.Background(), "laptop-1", domain.Coordinate{Latitude: 91, Longitude: 0})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestAccessService_Evaluate_InvalidLongitude(t *testing.T) {
	svc := usecases.NewAccessService(testFence(), nil, nil)

	_, err := svc.Evaluate(context.Background(), "laptop-1", domain.Coordinate{Latitude: 0, Longitude: -180.5})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestAccessService_Evaluate_RejectsNaN(t *testing.T) {
	svc := usecases.NewAccessService(testFence(), nil, nil)

	_, err := svc.Evaluate(context.Background(), "laptop-1", domain.Coordinate{Latitude: math.NaN(), Longitude: 78.3})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate for NaN, got %v", err)
	}
}

func TestAccessService_Evaluate_PublishesEvaluation(t *testing.T) {
	var published *domain.Evaluation
	events := &mockPublisher{
		publishFn: func(ctx context.Context, ev *domain.Evaluation) error {
			published = ev
			return nil
		},
	}

	svc := usecases.NewAccessService(testFence(), events, nil)
	pos := domain.Coordinate{Latitude: 17.438923, Longitude: 78.373906}
	decision, err := svc.Evaluate(context.Background(), "phone-7", pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if published == nil {
		t.Fatal("expected an evaluation event")
	}
	if published.ID == "" {
		t.Error("expected a generated evaluation id")
	}
	if published.Device != "phone-7" {
		t.Errorf("expected device phone-7, got %s", published.Device)
	}
	if published.Allowed != decision.Allowed {
		t.Error("event verdict does not match decision")
	}
	if published.DistanceMeters != decision.DistanceMeters {
		t.Error("event distance does not match decision")
	}
	if published.EvaluatedAt.IsZero() {
		t.Error("expected a timestamp on the event")
	}
}

func TestAccessService_Evaluate_PublisherFailureTolerated(t *testing.T) {
	events := &mockPublisher{
		publishFn: func(ctx context.Context, ev *domain.Evaluation) error {
			return fmt.Errorf("broker down")
		},
	}

	svc := usecases.NewAccessService(testFence(), events, nil)
	decision, err := svc.Evaluate(context.Background(), "laptop-1", domain.Coordinate{Latitude: 17.45, Longitude: 78.37})
	if err != nil {
		t.Fatalf("evaluation must not fail on publish errors: %v", err)
	}
	if decision == nil {
		t.Fatal("expected a decision despite publish failure")
	}
}

func TestAccessService_Evaluate_EmptyDeviceFallback(t *testing.T) {
	var published *domain.Evaluation
	events := &mockPublisher{
		publishFn: func(ctx context.Context, ev *domain.Evaluation) error {
			published = ev
			return nil
		},
	}

	svc := usecases.NewAccessService(testFence(), events, nil)
	if _, err := svc.Evaluate(context.Background(), "", domain.Coordinate{Latitude: 17.45, Longitude: 78.37}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if published.Device != "unknown" {
		t.Errorf("expected fallback device key, got %q", published.Device)
	}
}

func TestAccessService_Evaluate_RecordsPresence(t *testing.T) {
	cache := newMockCache()
	presence := usecases.NewPresenceService(cache)

	svc := usecases.NewAccessService(testFence(), nil, presence)
	if _, err := svc.Evaluate(context.Background(), "tablet-3", domain.Coordinate{Latitude: 17.45, Longitude: 78.37}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := presence.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 presence entry, got %d", len(entries))
	}
	if entries[0].Device != "tablet-3" {
		t.Errorf("expected device tablet-3, got %s", entries[0].Device)
	}
}
