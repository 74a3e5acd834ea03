package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	const query = `
		INSERT INTO review (user_id, campsite_id, rating, title, content, status)
		VALUES (:user_id, :campsite_id, :rating, :title, :content, :status)
		RETURNING id, user_id, campsite_id, rating, title, content, status,
		          moderated_by, moderated_at, reject_reason,
		          created_at, updated_at, deleted_at, deleted_by
	`
	args := map[string]any{
		"user_id":     review.UserID,
		"campsite_id": review.CampsiteID,
		"rating":      review.Rating,
		"title":       nullString(review.Title),
		"content":     nullString(review.Content),
		"status":      review.Status,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.Review
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *ReviewRepository) HasLiveReview(ctx context.Context, userID, campsiteID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM review
			WHERE user_id = $1 AND campsite_id = $2 AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, campsiteID); err != nil {
		return false, err
	}
	return exists, nil
}

const reviewSelectColumns = `
	r.id,
	r.user_id,
	r.campsite_id,
	r.rating,
	r.title,
	r.content,
	r.status,
	r.moderated_by,
	r.moderated_at,
	r.reject_reason,
	r.created_at,
	r.updated_at,
	r.deleted_at,
	r.deleted_by,
	u.full_name AS reviewer_name,
	u.username AS reviewer_username,
	u.user_image_url AS reviewer_avatar_url
`

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM review r
		JOIN user_account u ON u.id = r.user_id
		WHERE r.id = $1
	`, reviewSelectColumns)

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ListByCampsite(ctx context.Context, campsiteID uuid.UUID, filter domain.ReviewListFilter) ([]domain.Review, error) {
	clauses := []string{"r.campsite_id = $1", "r.status = 'approved'", "r.deleted_at IS NULL"}
	args := []any{campsiteID}
	idx := 2
	clauses, args, idx = appendRatingClauses(clauses, args, idx, filter.Rating, filter.MinRating, filter.MaxRating)

	where := "WHERE " + strings.Join(clauses, " AND ")

	sortCol := "r.created_at"
	if filter.SortField == domain.ReviewSortRating {
		sortCol = "r.rating"
	}
	order := "DESC"
	if filter.SortOrder == domain.SortOrderAsc {
		order = "ASC"
	}

	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM review r
		JOIN user_account u ON u.id = r.user_id
		%s
		ORDER BY %s %s, r.id DESC
		LIMIT $%d OFFSET $%d
	`, reviewSelectColumns, where, sortCol, order, idx, idx+1)

	return r.queryReviews(ctx, query, args...)
}

func (r *ReviewRepository) ListPending(ctx context.Context, limit, offset int) ([]domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s, c.name AS campsite_name
		FROM review r
		JOIN user_account u ON u.id = r.user_id
		JOIN campsite c ON c.id = r.campsite_id
		WHERE r.status = 'pending' AND r.deleted_at IS NULL
		ORDER BY r.created_at ASC, r.id
		LIMIT $1 OFFSET $2
	`, reviewSelectColumns)

	return r.queryReviews(ctx, query, limit, offset)
}

func (r *ReviewRepository) AggregateByCampsite(ctx context.Context, campsiteID uuid.UUID, filter domain.ReviewAggregateFilter) (*domain.ReviewAggregate, error) {
	clauses := []string{"r.campsite_id = $1", "r.status = 'approved'", "r.deleted_at IS NULL"}
	args := []any{campsiteID}
	idx := 2
	clauses, args, _ = appendRatingClauses(clauses, args, idx, filter.Rating, filter.MinRating, filter.MaxRating)

	where := "WHERE " + strings.Join(clauses, " AND ")

	query := fmt.Sprintf(`
		SELECT
			COUNT(*)::int AS total_reviews,
			COALESCE(AVG(r.rating)::float8, 0) AS average_rating,
			COUNT(*) FILTER (WHERE r.rating = 1)::int AS rating_1,
			COUNT(*) FILTER (WHERE r.rating = 2)::int AS rating_2,
			COUNT(*) FILTER (WHERE r.rating = 3)::int AS rating_3,
			COUNT(*) FILTER (WHERE r.rating = 4)::int AS rating_4,
			COUNT(*) FILTER (WHERE r.rating = 5)::int AS rating_5
		FROM review r
		%s
	`, where)

	var row struct {
		Total   int     `db:"total_reviews"`
		Average float64 `db:"average_rating"`
		Rating1 int     `db:"rating_1"`
		Rating2 int     `db:"rating_2"`
		Rating3 int     `db:"rating_3"`
		Rating4 int     `db:"rating_4"`
		Rating5 int     `db:"rating_5"`
	}

	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, err
	}

	return &domain.ReviewAggregate{
		CampsiteID:    campsiteID,
		AverageRating: row.Average,
		TotalReviews:  row.Total,
		RatingCounts: map[int]int{
			1: row.Rating1,
			2: row.Rating2,
			3: row.Rating3,
			4: row.Rating4,
			5: row.Rating5,
		},
	}, nil
}

func (r *ReviewRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus, moderatedBy uuid.UUID, rejectReason *string) error {
	const query = `
		UPDATE review
		SET status = $2, moderated_by = $3, moderated_at = NOW(),
		    reject_reason = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, status, moderatedBy, nullString(rejectReason))
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

func (r *ReviewRepository) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	const query = `
		UPDATE review
		SET deleted_at = NOW(), deleted_by = $2
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, deletedBy)
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

func (r *ReviewRepository) queryReviews(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.StructScan(&review); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func appendRatingClauses(clauses []string, args []any, idx int, rating, minRating, maxRating *int) ([]string, []any, int) {
	if rating != nil {
		clauses = append(clauses, fmt.Sprintf("r.rating = $%d", idx))
		args = append(args, *rating)
		idx++
	}
	if minRating != nil {
		clauses = append(clauses, fmt.Sprintf("r.rating >= $%d", idx))
		args = append(args, *minRating)
		idx++
	}
	if maxRating != nil {
		clauses = append(clauses, fmt.Sprintf("r.rating <= $%d", idx))
		args = append(args, *maxRating)
		idx++
	}
	return clauses, args, idx
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)
