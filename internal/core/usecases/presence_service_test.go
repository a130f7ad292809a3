package usecases_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
	"github.com/lalit-0106/gps-attendance-app/internal/core/usecases"
)

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, context.Canceled // any error stands in for a miss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// --- Tests ---

func TestPresenceService_RecordAndList(t *testing.T) {
	presence := usecases.NewPresenceService(newMockCache())

	older := &domain.Evaluation{
		ID: "a", Device: "laptop-1",
		Position:    domain.Coordinate{Latitude: 17.44, Longitude: 78.37},
		Allowed:     true,
		EvaluatedAt: time.Now().Add(-time.Minute),
	}
	newer := &domain.Evaluation{
		ID: "b", Device: "phone-7",
		Position:    domain.Coordinate{Latitude: 17.437391, Longitude: 78.374825},
		Allowed:     false,
		EvaluatedAt: time.Now(),
	}

	for _, ev := range []*domain.Evaluation{older, newer} {
		if err := presence.Record(context.Background(), ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := presence.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Device != "phone-7" {
		t.Errorf("expected most recent entry first, got %s", entries[0].Device)
	}
}

func TestPresenceService_RecordOverwritesDevice(t *testing.T) {
	presence := usecases.NewPresenceService(newMockCache())

	first := &domain.Evaluation{ID: "a", Device: "laptop-1", Allowed: true, EvaluatedAt: time.Now().Add(-time.Second)}
	second := &domain.Evaluation{ID: "b", Device: "laptop-1", Allowed: false, EvaluatedAt: time.Now()}

	_ = presence.Record(context.Background(), first)
	_ = presence.Record(context.Background(), second)

	entries, err := presence.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry per device, got %d", len(entries))
	}
	if entries[0].ID != "b" {
		t.Errorf("expected latest evaluation kept, got %s", entries[0].ID)
	}
}

func TestPresenceService_ListSkipsCorruptEntries(t *testing.T) {
	cache := newMockCache()
	cache.data["presence:broken"] = []byte("{not json")

	presence := usecases.NewPresenceService(cache)
	ok := &domain.Evaluation{ID: "a", Device: "laptop-1", EvaluatedAt: time.Now()}
	_ = presence.Record(context.Background(), ok)

	entries, err := presence.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected corrupt entry skipped, got %d entries", len(entries))
	}
}

func TestPresenceService_NilCache(t *testing.T) {
	presence := usecases.NewPresenceService(nil)

	if err := presence.Record(context.Background(), &domain.Evaluation{Device: "laptop-1"}); err != nil {
		t.Errorf("record with nil cache: %v", err)
	}
	entries, err := presence.List(context.Background())
	if err != nil {
		t.Errorf("list with nil cache: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}
