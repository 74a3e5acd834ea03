package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/campthai/campthai-backend/internal/domain"
)

type WishlistRepository interface {
	Add(ctx context.Context, userID, campsiteID uuid.UUID) (*domain.WishlistItem, error)
	Remove(ctx context.Context, userID, campsiteID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.WishlistListItem, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	ContainsAll(ctx context.Context, userID uuid.UUID, campsiteIDs []uuid.UUID) (bool, error)
}
