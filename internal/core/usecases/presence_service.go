package usecases

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
	"github.com/lalit-0106/gps-attendance-app/internal/core/ports"
)

const (
	presenceKeyPrefix = "presence:"
	presenceTTL       = 300 // seconds; entries expire on their own
)

// PresenceService keeps an ephemeral snapshot of the last geofence check
// per device. Entries live only in the cache and expire after presenceTTL,
// so the view is a live snapshot, never a history.
type PresenceService struct {
	cache ports.CacheService
}

// NewPresenceService creates a new PresenceService. cache may be nil; the
// service then degrades to a no-op.
func NewPresenceService(cache ports.CacheService) *PresenceService {
	return &PresenceService{cache: cache}
}

// Record stores the evaluation as the device's current presence entry.
func (s *PresenceService) Record(ctx context.Context, ev *domain.Evaluation) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, presenceKeyPrefix+ev.Device, data, presenceTTL)
}

// List returns all live presence entries, most recent first.
func (s *PresenceService) List(ctx context.Context) ([]domain.Evaluation, error) {
	if s.cache == nil {
		return nil, nil
	}

	keys, err := s.cache.Keys(ctx, presenceKeyPrefix+"*")
	if err != nil {
		return nil, err
	}

	entries := make([]domain.Evaluation, 0, len(keys))
	for _, key := range keys {
		data, err := s.cache.Get(ctx, key)
		if err != nil {
			// Key may have expired between Keys and Get.
			continue
		}
		var ev domain.Evaluation
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		entries = append(entries, ev)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EvaluatedAt.After(entries[j].EvaluatedAt)
	})
	return entries, nil
}
