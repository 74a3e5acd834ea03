package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/campthai/campthai-backend/internal/domain"
)

type ReviewPhotoRepository interface {
	CreateMany(ctx context.Context, photos []domain.ReviewPhoto) error
	ListByReviewIDs(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID][]domain.ReviewPhoto, error)
}
