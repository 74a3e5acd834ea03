package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/campthai/campthai-backend/internal/domain"
)

type CampsiteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Campsite, error)
	FindPublishedByID(ctx context.Context, id uuid.UUID) (*domain.Campsite, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Campsite, error)
	Search(ctx context.Context, filter domain.CampsiteFilter) ([]domain.Campsite, int64, error)
	MarkersInBounds(ctx context.Context, bounds domain.MapBounds, filter domain.CampsiteFilter, limit int) ([]domain.CampsiteMarker, error)
	ListPopular(ctx context.Context, limit int) ([]domain.Campsite, error)
	UpdateRatingAggregate(ctx context.Context, id uuid.UUID, average float64, count int) error
	UpdatePopularity(ctx context.Context, id uuid.UUID, score float64) error
}
