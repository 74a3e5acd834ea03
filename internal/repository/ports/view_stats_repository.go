package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/campthai/campthai-backend/internal/domain"
)

type ViewStatsRepository interface {
	RecordView(ctx context.Context, campsiteID uuid.UUID) error
	ListPopularityInputs(ctx context.Context) ([]domain.PopularityInput, error)
}
