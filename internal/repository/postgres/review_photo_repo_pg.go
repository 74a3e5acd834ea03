package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

type ReviewPhotoRepository struct {
	db *sqlx.DB
}

func NewReviewPhotoRepo(db *sqlx.DB) *ReviewPhotoRepository {
	return &ReviewPhotoRepository{db: db}
}

func (r *ReviewPhotoRepository) CreateMany(ctx context.Context, photos []domain.ReviewPhoto) error {
	if len(photos) == 0 {
		return nil
	}

	const query = `
		INSERT INTO review_photo (review_id, object_key, url, ordering)
		VALUES (:review_id, :object_key, :url, :ordering)
	`
	rows := make([]map[string]any, 0, len(photos))
	for _, photo := range photos {
		rows = append(rows, map[string]any{
			"review_id":  photo.ReviewID,
			"object_key": photo.ObjectKey,
			"url":        photo.URL,
			"ordering":   photo.Ordering,
		})
	}
	_, err := r.db.NamedExecContext(ctx, query, rows)
	return err
}

func (r *ReviewPhotoRepository) ListByReviewIDs(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID][]domain.ReviewPhoto, error) {
	result := make(map[uuid.UUID][]domain.ReviewPhoto, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(reviewIDs))
	for _, id := range reviewIDs {
		ids = append(ids, id.String())
	}

	const query = `
		SELECT id, review_id, object_key, url, ordering, created_at
		FROM review_photo
		WHERE review_id = ANY($1)
		ORDER BY review_id, ordering, id
	`
	rows, err := r.db.QueryxContext(ctx, query, pq.StringArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var photo domain.ReviewPhoto
		if err := rows.StructScan(&photo); err != nil {
			return nil, err
		}
		result[photo.ReviewID] = append(result[photo.ReviewID], photo)
	}
	return result, rows.Err()
}

var _ ports.ReviewPhotoRepository = (*ReviewPhotoRepository)(nil)
