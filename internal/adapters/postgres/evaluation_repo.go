package postgres

import (
	"context"

	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
)

// EvaluationRepo implements ports.EvaluationLogRepository.
type EvaluationRepo struct {
	db *DB
}

func NewEvaluationRepo(db *DB) *EvaluationRepo {
	return &EvaluationRepo{db: db}
}

func (r *EvaluationRepo) Insert(ctx context.Context, ev *domain.Evaluation) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO evaluation_log (id, device, latitude, longitude, distance_m, allowed, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, ev.ID, ev.Device, ev.Position.Latitude, ev.Position.Longitude,
		ev.DistanceMeters, ev.Allowed, ev.EvaluatedAt)
	return err
}

func (r *EvaluationRepo) ListRecent(ctx context.Context, limit int) ([]domain.Evaluation, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, device, latitude, longitude, distance_m, allowed, evaluated_at
		FROM evaluation_log
		ORDER BY evaluated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evs []domain.Evaluation
	for rows.Next() {
		var ev domain.Evaluation
		if err := rows.Scan(
			&ev.ID, &ev.Device,
			&ev.Position.Latitude, &ev.Position.Longitude,
			&ev.DistanceMeters, &ev.Allowed, &ev.EvaluatedAt,
		); err != nil {
			return nil, err
		}
		evs = append(evs, ev)
	}
	return evs, rows.Err()
}
