package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

type ViewStatsRepository struct {
	db *sqlx.DB
}

func NewViewStatsRepo(db *sqlx.DB) *ViewStatsRepository {
	return &ViewStatsRepository{db: db}
}

func (r *ViewStatsRepository) RecordView(ctx context.Context, campsiteID uuid.UUID) error {
	const query = `
		INSERT INTO campsite_view_day (campsite_id, day, views)
		VALUES ($1, date_trunc('day', NOW() AT TIME ZONE 'utc'), 1)
		ON CONFLICT (campsite_id, day) DO UPDATE
		SET views = campsite_view_day.views + 1
	`
	_, err := r.db.ExecContext(ctx, query, campsiteID)
	return err
}

func (r *ViewStatsRepository) ListPopularityInputs(ctx context.Context) ([]domain.PopularityInput, error) {
	const query = `
		SELECT
			c.id AS campsite_id,
			COALESCE(SUM(v.views) FILTER (WHERE v.day >= date_trunc('day', NOW() AT TIME ZONE 'utc') - INTERVAL '7 days'), 0)::bigint AS views_7d,
			COALESCE(SUM(v.views) FILTER (WHERE v.day >= date_trunc('day', NOW() AT TIME ZONE 'utc') - INTERVAL '30 days'), 0)::bigint AS views_30d,
			c.average_rating,
			c.review_count
		FROM campsite c
		LEFT JOIN campsite_view_day v ON v.campsite_id = c.id
		WHERE c.status = 'published' AND c.deleted_at IS NULL
		GROUP BY c.id, c.average_rating, c.review_count
	`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inputs []domain.PopularityInput
	for rows.Next() {
		var input domain.PopularityInput
		if err := rows.StructScan(&input); err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
	}
	return inputs, rows.Err()
}

var _ ports.ViewStatsRepository = (*ViewStatsRepository)(nil)
