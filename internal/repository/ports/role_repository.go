package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/campthai/campthai-backend/internal/domain"
)

type RoleRepository interface {
	GetOrCreateRole(ctx context.Context, name, description string) (*domain.Role, error)
	AssignUserRole(ctx context.Context, userID, roleID uuid.UUID) error
}
