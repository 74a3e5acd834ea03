package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

type CampsiteRepository struct {
	db *sqlx.DB
}

func NewCampsiteRepo(db *sqlx.DB) *CampsiteRepository {
	return &CampsiteRepository{db: db}
}

const campsiteColumns = `
	c.id, c.name, c.slug, c.campsite_type, c.status, c.description,
	c.province_id, p.name_en AS province_name, c.district,
	c.latitude, c.longitude, c.price_min, c.price_max,
	c.amenities, c.hero_image_url, c.gallery, c.contact,
	c.average_rating, c.review_count, c.popularity,
	c.created_at, c.updated_at, c.deleted_at
`

func (r *CampsiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Campsite, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM campsite c
		LEFT JOIN province p ON p.id = c.province_id
		WHERE c.id = $1 AND c.deleted_at IS NULL
	`, campsiteColumns)

	var campsite domain.Campsite
	if err := r.db.GetContext(ctx, &campsite, query, id); err != nil {
		return nil, err
	}
	return &campsite, nil
}

func (r *CampsiteRepository) FindPublishedByID(ctx context.Context, id uuid.UUID) (*domain.Campsite, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM campsite c
		LEFT JOIN province p ON p.id = c.province_id
		WHERE c.id = $1 AND c.status = 'published' AND c.deleted_at IS NULL
	`, campsiteColumns)

	var campsite domain.Campsite
	if err := r.db.GetContext(ctx, &campsite, query, id); err != nil {
		return nil, err
	}
	return &campsite, nil
}

func (r *CampsiteRepository) FindBySlug(ctx context.Context, slug string) (*domain.Campsite, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM campsite c
		LEFT JOIN province p ON p.id = c.province_id
		WHERE c.slug = $1 AND c.deleted_at IS NULL
	`, campsiteColumns)

	var campsite domain.Campsite
	if err := r.db.GetContext(ctx, &campsite, query, slug); err != nil {
		return nil, err
	}
	return &campsite, nil
}

func (r *CampsiteRepository) Search(ctx context.Context, filter domain.CampsiteFilter) ([]domain.Campsite, int64, error) {
	clauses, args, idx := campsiteFilterClauses(filter, 1)
	where := "WHERE " + strings.Join(clauses, " AND ")

	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM campsite c
		LEFT JOIN province p ON p.id = c.province_id
		%s
		ORDER BY %s, c.id DESC
		LIMIT $%d OFFSET $%d
	`, campsiteColumns, where, campsiteOrderBy(filter.Sort), idx, idx+1)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	type searchRow struct {
		domain.Campsite
		TotalCount int64 `db:"total_count"`
	}

	var campsites []domain.Campsite
	var total int64
	for rows.Next() {
		var row searchRow
		if err := rows.StructScan(&row); err != nil {
			return nil, 0, err
		}
		campsites = append(campsites, row.Campsite)
		total = row.TotalCount
	}
	return campsites, total, rows.Err()
}

func (r *CampsiteRepository) MarkersInBounds(ctx context.Context, bounds domain.MapBounds, filter domain.CampsiteFilter, limit int) ([]domain.CampsiteMarker, error) {
	clauses, args, idx := campsiteFilterClauses(filter, 1)
	clauses = append(clauses,
		fmt.Sprintf("c.latitude BETWEEN $%d AND $%d", idx, idx+1),
		fmt.Sprintf("c.longitude BETWEEN $%d AND $%d", idx+2, idx+3),
	)
	args = append(args, bounds.MinLat, bounds.MaxLat, bounds.MinLng, bounds.MaxLng)
	idx += 4

	where := "WHERE " + strings.Join(clauses, " AND ")
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT c.id, c.name, c.slug, c.campsite_type, c.latitude, c.longitude,
		       c.price_min, c.average_rating
		FROM campsite c
		%s
		ORDER BY c.popularity DESC, c.id
		LIMIT $%d
	`, where, idx)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var markers []domain.CampsiteMarker
	for rows.Next() {
		var marker domain.CampsiteMarker
		if err := rows.StructScan(&marker); err != nil {
			return nil, err
		}
		markers = append(markers, marker)
	}
	return markers, rows.Err()
}

func (r *CampsiteRepository) ListPopular(ctx context.Context, limit int) ([]domain.Campsite, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM campsite c
		LEFT JOIN province p ON p.id = c.province_id
		WHERE c.status = 'published' AND c.deleted_at IS NULL
		ORDER BY c.popularity DESC, c.average_rating DESC, c.id
		LIMIT $1
	`, campsiteColumns)

	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campsites []domain.Campsite
	for rows.Next() {
		var campsite domain.Campsite
		if err := rows.StructScan(&campsite); err != nil {
			return nil, err
		}
		campsites = append(campsites, campsite)
	}
	return campsites, rows.Err()
}

func (r *CampsiteRepository) UpdateRatingAggregate(ctx context.Context, id uuid.UUID, average float64, count int) error {
	const query = `
		UPDATE campsite
		SET average_rating = $2, review_count = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, average, count)
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

func (r *CampsiteRepository) UpdatePopularity(ctx context.Context, id uuid.UUID, score float64) error {
	const query = `UPDATE campsite SET popularity = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, score)
	return err
}

// campsiteFilterClauses builds the shared WHERE fragment for Search and
// MarkersInBounds. Only published, live rows are ever visible to consumers.
func campsiteFilterClauses(filter domain.CampsiteFilter, startIdx int) ([]string, []any, int) {
	clauses := []string{"c.status = 'published'", "c.deleted_at IS NULL"}
	var args []any
	idx := startIdx

	if q := strings.TrimSpace(filter.Query); q != "" {
		clauses = append(clauses, fmt.Sprintf("(c.name ILIKE $%d OR c.description ILIKE $%d)", idx, idx))
		args = append(args, "%"+q+"%")
		idx++
	}
	if filter.ProvinceID != nil {
		clauses = append(clauses, fmt.Sprintf("c.province_id = $%d", idx))
		args = append(args, *filter.ProvinceID)
		idx++
	}
	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		clauses = append(clauses, fmt.Sprintf("c.campsite_type = ANY($%d)", idx))
		args = append(args, pq.StringArray(types))
		idx++
	}
	if len(filter.Amenities) > 0 {
		clauses = append(clauses, fmt.Sprintf("c.amenities @> $%d::jsonb", idx))
		args = append(args, domain.StringList(filter.Amenities))
		idx++
	}
	if filter.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("c.price_max >= $%d", idx))
		args = append(args, *filter.MinPrice)
		idx++
	}
	if filter.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("c.price_min <= $%d", idx))
		args = append(args, *filter.MaxPrice)
		idx++
	}
	if filter.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("c.average_rating >= $%d", idx))
		args = append(args, *filter.MinRating)
		idx++
	}

	return clauses, args, idx
}

func campsiteOrderBy(sort domain.CampsiteSort) string {
	switch sort {
	case domain.CampsiteSortPriceAsc:
		return "c.price_min ASC"
	case domain.CampsiteSortPriceDesc:
		return "c.price_min DESC"
	case domain.CampsiteSortRating:
		return "c.average_rating DESC, c.review_count DESC"
	case domain.CampsiteSortNewest:
		return "c.created_at DESC"
	default:
		return "c.popularity DESC, c.average_rating DESC"
	}
}

var _ ports.CampsiteRepository = (*CampsiteRepository)(nil)
