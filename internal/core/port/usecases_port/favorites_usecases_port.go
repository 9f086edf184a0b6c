package usecases_port

import (
	"context"

	"search-service/internal/core/domain"

	"github.com/google/uuid"
)

type AddToFavoritesUseCase interface {
	Execute(ctx context.Context, userID, propertyID uuid.UUID) error
}

type RemoveFromFavoritesUseCase interface {
	Execute(ctx context.Context, userID, propertyID uuid.UUID) error
}

// ToggleFavoriteUseCase возвращает новое состояние: true - в избранном.
type ToggleFavoriteUseCase interface {
	Execute(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
}

type ListFavoritesUseCase interface {
	Execute(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.SearchResult, error)
}
