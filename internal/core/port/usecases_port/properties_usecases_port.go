package usecases_port

import (
	"context"

	"search-service/internal/core/domain"
	"search-service/internal/core/search"

	"github.com/google/uuid"
)

type SearchPropertiesUseCase interface {
	Execute(ctx context.Context, raw search.RawFilters) (*domain.SearchResult, error)
}

type GetPropertyDetailsUseCase interface {
	Execute(ctx context.Context, propertyID uuid.UUID, viewer domain.Viewer) (*domain.Property, error)
}

type CreatePropertyUseCase interface {
	Execute(ctx context.Context, input domain.NewPropertyInput) (*domain.Property, error)
}

type UpdatePropertyStatusUseCase interface {
	Execute(ctx context.Context, propertyID uuid.UUID, status string) (*domain.Property, error)
}

type GetSuggestionsUseCase interface {
	Execute(ctx context.Context, query string, limit int) ([]string, error)
}

type GetLocationsUseCase interface {
	Execute(ctx context.Context) (*domain.Locations, error)
}

type GetAmenitiesUseCase interface {
	Execute(ctx context.Context) ([]string, error)
}

type FindSimilarUseCase interface {
	Execute(ctx context.Context, propertyID uuid.UUID, limit int) ([]domain.Property, error)
}

type FindNearbyUseCase interface {
	Execute(ctx context.Context, query domain.NearbyQuery) ([]domain.Property, error)
}
