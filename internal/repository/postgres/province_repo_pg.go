package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

type ProvinceRepository struct {
	db *sqlx.DB
}

func NewProvinceRepo(db *sqlx.DB) *ProvinceRepository {
	return &ProvinceRepository{db: db}
}

func (r *ProvinceRepository) List(ctx context.Context) ([]domain.Province, error) {
	const query = `
		SELECT
			p.id,
			p.name_en,
			p.name_th,
			p.region,
			COUNT(c.id) FILTER (WHERE c.status = 'published' AND c.deleted_at IS NULL)::int AS campsite_count
		FROM province p
		LEFT JOIN campsite c ON c.province_id = p.id
		GROUP BY p.id, p.name_en, p.name_th, p.region
		ORDER BY p.name_en
	`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var provinces []domain.Province
	for rows.Next() {
		var province domain.Province
		if err := rows.StructScan(&province); err != nil {
			return nil, err
		}
		provinces = append(provinces, province)
	}
	return provinces, rows.Err()
}

func (r *ProvinceRepository) FindByID(ctx context.Context, id int) (*domain.Province, error) {
	const query = `
		SELECT id, name_en, name_th, region, 0 AS campsite_count
		FROM province
		WHERE id = $1
	`
	var province domain.Province
	if err := r.db.GetContext(ctx, &province, query, id); err != nil {
		return nil, err
	}
	return &province, nil
}

var _ ports.ProvinceRepository = (*ProvinceRepository)(nil)
