package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
)

const (
	minSuggestionQueryLen  = 2
	defaultSuggestionLimit = 10
	maxSuggestionLimit     = 50
)

type GetSuggestionsUseCase struct {
	storage port.PropertyStoragePort
}

func NewGetSuggestionsUseCase(storage port.PropertyStoragePort) *GetSuggestionsUseCase {
	return &GetSuggestionsUseCase{storage: storage}
}

// Execute возвращает города и районы, содержащие query.
// Запрос короче двух символов дает пустой список.
func (uc *GetSuggestionsUseCase) Execute(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSuggestionQueryLen {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetSuggestions",
		"query":    query,
		"limit":    limit,
	})

	ucLogger.Info("Use case started", nil)

	suggestions, err := uc.storage.GetSuggestions(ctx, query, limit)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("get suggestions: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(suggestions)})
	return suggestions, nil
}

type GetLocationsUseCase struct {
	storage port.PropertyStoragePort
}

func NewGetLocationsUseCase(storage port.PropertyStoragePort) *GetLocationsUseCase {
	return &GetLocationsUseCase{storage: storage}
}

func (uc *GetLocationsUseCase) Execute(ctx context.Context) (*domain.Locations, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetLocations"})

	ucLogger.Info("Use case started", nil)

	locations, err := uc.storage.GetLocations(ctx)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("get locations: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"cities":    len(locations.Cities),
		"districts": len(locations.Districts),
	})
	return locations, nil
}

type GetAmenitiesUseCase struct {
	storage port.PropertyStoragePort
}

func NewGetAmenitiesUseCase(storage port.PropertyStoragePort) *GetAmenitiesUseCase {
	return &GetAmenitiesUseCase{storage: storage}
}

func (uc *GetAmenitiesUseCase) Execute(ctx context.Context) ([]string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetAmenities"})

	ucLogger.Info("Use case started", nil)

	amenities, err := uc.storage.GetAmenities(ctx)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("get amenities: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(amenities)})
	return amenities, nil
}
