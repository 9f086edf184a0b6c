package usecase

import (
	"context"
	"fmt"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
)

type AddToFavoritesUseCase struct {
	repo    port.FavoritesRepositoryPort
	storage port.PropertyStoragePort
}

func NewAddToFavoritesUseCase(repo port.FavoritesRepositoryPort, storage port.PropertyStoragePort) *AddToFavoritesUseCase {
	return &AddToFavoritesUseCase{repo: repo, storage: storage}
}

// Execute добавляет объект в избранное. Повторное добавление ничего не меняет.
func (uc *AddToFavoritesUseCase) Execute(ctx context.Context, userID, propertyID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "AddToFavorites",
		"user_id":     userID,
		"property_id": propertyID,
	})

	ucLogger.Info("Use case started", nil)

	if _, err := uc.storage.GetByID(ctx, propertyID); err != nil {
		ucLogger.Error("Property lookup failed", err, nil)
		return fmt.Errorf("get property %s: %w", propertyID, err)
	}

	if err := uc.repo.Add(ctx, userID, propertyID); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return fmt.Errorf("add favorite: %w", err)
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type RemoveFromFavoritesUseCase struct {
	repo port.FavoritesRepositoryPort
}

func NewRemoveFromFavoritesUseCase(repo port.FavoritesRepositoryPort) *RemoveFromFavoritesUseCase {
	return &RemoveFromFavoritesUseCase{repo: repo}
}

func (uc *RemoveFromFavoritesUseCase) Execute(ctx context.Context, userID, propertyID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "RemoveFromFavorites",
		"user_id":     userID,
		"property_id": propertyID,
	})

	ucLogger.Info("Use case started", nil)

	if err := uc.repo.Remove(ctx, userID, propertyID); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return fmt.Errorf("remove favorite: %w", err)
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type ToggleFavoriteUseCase struct {
	add    *AddToFavoritesUseCase
	remove *RemoveFromFavoritesUseCase
	repo   port.FavoritesRepositoryPort
}

func NewToggleFavoriteUseCase(repo port.FavoritesRepositoryPort, storage port.PropertyStoragePort) *ToggleFavoriteUseCase {
	return &ToggleFavoriteUseCase{
		add:    NewAddToFavoritesUseCase(repo, storage),
		remove: NewRemoveFromFavoritesUseCase(repo),
		repo:   repo,
	}
}

// Execute возвращает true, если после вызова объект в избранном.
func (uc *ToggleFavoriteUseCase) Execute(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	present, err := uc.repo.Contains(ctx, userID, propertyID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	if present {
		return false, uc.remove.Execute(ctx, userID, propertyID)
	}
	return true, uc.add.Execute(ctx, userID, propertyID)
}

type ListFavoritesUseCase struct {
	repo    port.FavoritesRepositoryPort
	storage port.PropertyStoragePort
}

func NewListFavoritesUseCase(repo port.FavoritesRepositoryPort, storage port.PropertyStoragePort) *ListFavoritesUseCase {
	return &ListFavoritesUseCase{repo: repo, storage: storage}
}

// Execute отдает страницу избранного, новые записи первыми.
// Объекты, которых уже нет в хранилище, пропускаются.
// Границы page и limit те же, что у поиска.
func (uc *ListFavoritesUseCase) Execute(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.SearchResult, error) {
	if page < 1 {
		return nil, domain.NewValidationError("page", "must be >= 1, got %d", page)
	}
	if limit < 1 || limit > domain.MaxLimit {
		return nil, domain.NewValidationError("limit", "must be between 1 and %d, got %d", domain.MaxLimit, limit)
	}
	offset := (page - 1) * limit

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ListFavorites",
		"user_id":  userID,
		"page":     page,
		"limit":    limit,
	})

	ucLogger.Info("Use case started", nil)

	paginatedIDs, err := uc.repo.FindPaginatedByUser(ctx, userID, limit, offset)
	if err != nil {
		ucLogger.Error("Failed to get favorite IDs from repository", err, nil)
		return nil, fmt.Errorf("failed to get favorite IDs: %w", err)
	}

	if len(paginatedIDs.PropertyIDs) == 0 {
		ucLogger.Info("No favorites on page", port.Fields{"total_count": paginatedIDs.TotalCount})
		result := domain.NewSearchResult(nil, paginatedIDs.TotalCount, page, limit)
		return &result, nil
	}

	properties, err := uc.storage.GetByIDs(ctx, paginatedIDs.PropertyIDs)
	if err != nil {
		ucLogger.Error("Failed to get favorite properties from storage", err, nil)
		return nil, fmt.Errorf("failed to get favorite properties: %w", err)
	}

	// хранилище не гарантирует порядок, восстанавливаем порядок избранного
	byID := make(map[uuid.UUID]domain.Property, len(properties))
	for _, p := range properties {
		byID[p.ID] = p
	}
	ordered := make([]domain.Property, 0, len(paginatedIDs.PropertyIDs))
	for _, id := range paginatedIDs.PropertyIDs {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	result := domain.NewSearchResult(ordered, paginatedIDs.TotalCount, page, limit)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_favorites": paginatedIDs.TotalCount,
		"items_on_page":   len(ordered),
	})
	return &result, nil
}
