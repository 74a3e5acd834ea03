package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

type WishlistRepository struct {
	db *sqlx.DB
}

func NewWishlistRepo(db *sqlx.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

func (r *WishlistRepository) Add(ctx context.Context, userID, campsiteID uuid.UUID) (*domain.WishlistItem, error) {
	const query = `
		INSERT INTO wishlist_item (user_account_id, campsite_id)
		VALUES ($1, $2)
		RETURNING id, user_account_id, campsite_id, created_at
	`
	var item domain.WishlistItem
	if err := r.db.GetContext(ctx, &item, query, userID, campsiteID); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, campsiteID uuid.UUID) error {
	const query = `
		DELETE FROM wishlist_item
		WHERE user_account_id = $1 AND campsite_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, userID, campsiteID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *WishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.WishlistListItem, error) {
	const query = `
		SELECT
			w.id,
			w.campsite_id,
			w.created_at,
			c.name AS campsite_name,
			c.slug AS campsite_slug,
			c.campsite_type,
			p.name_en AS province_name,
			c.price_min,
			c.price_max,
			c.hero_image_url,
			c.average_rating,
			c.review_count
		FROM wishlist_item w
		JOIN campsite c ON c.id = w.campsite_id
		LEFT JOIN province p ON p.id = c.province_id
		WHERE w.user_account_id = $1 AND c.deleted_at IS NULL
		ORDER BY w.created_at DESC, w.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryxContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.WishlistListItem
	for rows.Next() {
		var item domain.WishlistListItem
		if err := rows.StructScan(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *WishlistRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM wishlist_item w
		JOIN campsite c ON c.id = w.campsite_id
		WHERE w.user_account_id = $1 AND c.deleted_at IS NULL
	`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *WishlistRepository) ContainsAll(ctx context.Context, userID uuid.UUID, campsiteIDs []uuid.UUID) (bool, error) {
	if len(campsiteIDs) == 0 {
		return true, nil
	}

	ids := make([]string, 0, len(campsiteIDs))
	for _, id := range campsiteIDs {
		ids = append(ids, id.String())
	}

	const query = `
		SELECT COUNT(DISTINCT campsite_id)
		FROM wishlist_item
		WHERE user_account_id = $1 AND campsite_id = ANY($2)
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, pq.StringArray(ids)); err != nil {
		return false, err
	}
	return count == len(campsiteIDs), nil
}

var _ ports.WishlistRepository = (*WishlistRepository)(nil)
