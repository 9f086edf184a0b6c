package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"search-service/internal/contextkeys"
	"search-service/internal/core/port"
	"search-service/internal/core/search"
)

const savedFiltersKeyPrefix = "real-estate-search-filters:"

func savedFiltersKey(owner string) string {
	return savedFiltersKeyPrefix + owner
}

// SavedFiltersUseCase хранит последние фильтры поиска владельца:
// загрузка при старте, сохранение при каждом изменении.
type SavedFiltersUseCase struct {
	store port.KeyValueStorePort
}

func NewSavedFiltersUseCase(store port.KeyValueStorePort) *SavedFiltersUseCase {
	return &SavedFiltersUseCase{store: store}
}

// Load возвращает сохраненные фильтры. Отсутствующие или поврежденные
// данные дают пустой набор.
func (uc *SavedFiltersUseCase) Load(ctx context.Context, owner string) (search.RawFilters, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "LoadSavedFilters",
		"owner":    owner,
	})

	data, found, err := uc.store.Get(ctx, savedFiltersKey(owner))
	if err != nil {
		ucLogger.Error("Key-value store returned an error", err, nil)
		return nil, fmt.Errorf("load saved filters: %w", err)
	}
	if !found {
		return search.RawFilters{}, nil
	}

	var raw search.RawFilters
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		ucLogger.Warn("Saved filters are corrupted, ignoring", port.Fields{"bytes": len(data)})
		return search.RawFilters{}, nil
	}

	spec, err := search.Validate(raw)
	if err != nil {
		ucLogger.Warn("Saved filters are no longer valid, ignoring", port.Fields{"error": err.Error()})
		return search.RawFilters{}, nil
	}
	return search.ToRawFilters(spec), nil
}

// Save проверяет фильтры и сохраняет их в нормализованном виде.
func (uc *SavedFiltersUseCase) Save(ctx context.Context, owner string, raw search.RawFilters) (search.RawFilters, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "SaveFilters",
		"owner":    owner,
	})

	ucLogger.Info("Use case started", nil)

	spec, err := search.Validate(raw)
	if err != nil {
		ucLogger.Warn("Filters rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	normalized := search.ToRawFilters(spec)
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode saved filters: %w", err)
	}
	if err := uc.store.Set(ctx, savedFiltersKey(owner), data); err != nil {
		ucLogger.Error("Key-value store returned an error", err, nil)
		return nil, fmt.Errorf("save filters: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"active_filters": search.ActiveFilterCount(spec),
	})
	return normalized, nil
}

func (uc *SavedFiltersUseCase) Reset(ctx context.Context, owner string) error {
	if err := uc.store.Delete(ctx, savedFiltersKey(owner)); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Key-value store returned an error", err, port.Fields{
			"use_case": "ResetSavedFilters",
			"owner":    owner,
		})
		return fmt.Errorf("reset saved filters: %w", err)
	}
	return nil
}
