package domain

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteItem - одна запись избранного пользователя.
type FavoriteItem struct {
	UserID     uuid.UUID
	PropertyID uuid.UUID
	CreatedAt  time.Time
}

// PaginatedFavoriteIDs - страница id избранного и общее количество.
type PaginatedFavoriteIDs struct {
	PropertyIDs []uuid.UUID
	TotalCount  int
}
