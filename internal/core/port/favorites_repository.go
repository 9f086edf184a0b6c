package port

import (
	"context"

	"search-service/internal/core/domain"

	"github.com/google/uuid"
)

// FavoritesRepositoryPort - избранное пользователя.
// Add идемпотентен, Remove отсутствующей записи не является ошибкой.
type FavoritesRepositoryPort interface {
	Add(ctx context.Context, userID, propertyID uuid.UUID) error
	Remove(ctx context.Context, userID, propertyID uuid.UUID) error
	Contains(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	// FindPaginatedByUser отдает id от самых новых к старым.
	FindPaginatedByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PaginatedFavoriteIDs, error)
}
