package usecases_port

import (
	"context"

	"search-service/internal/core/search"
)

// SavedFiltersUseCase - сохраненные фильтры поиска владельца.
type SavedFiltersUseCase interface {
	Load(ctx context.Context, owner string) (search.RawFilters, error)
	Save(ctx context.Context, owner string, raw search.RawFilters) (search.RawFilters, error)
	Reset(ctx context.Context, owner string) error
}
