package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/campthai/campthai-backend/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	HasLiveReview(ctx context.Context, userID, campsiteID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListByCampsite(ctx context.Context, campsiteID uuid.UUID, filter domain.ReviewListFilter) ([]domain.Review, error)
	ListPending(ctx context.Context, limit, offset int) ([]domain.Review, error)
	AggregateByCampsite(ctx context.Context, campsiteID uuid.UUID, filter domain.ReviewAggregateFilter) (*domain.ReviewAggregate, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus, moderatedBy uuid.UUID, rejectReason *string) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
}
