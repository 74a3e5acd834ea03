package ports

import (
	"context"

	"github.com/campthai/campthai-backend/internal/domain"
)

type ProvinceRepository interface {
	List(ctx context.Context) ([]domain.Province, error)
	FindByID(ctx context.Context, id int) (*domain.Province, error)
}
