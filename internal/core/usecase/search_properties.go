package usecase

import (
	"context"
	"fmt"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/search"
)

type SearchPropertiesUseCase struct {
	storage port.PropertyStoragePort
	metrics port.SearchMetricsPort
	source  string
}

// NewSearchPropertiesUseCase. source попадает в метрики (например "query" или "body").
func NewSearchPropertiesUseCase(storage port.PropertyStoragePort, metrics port.SearchMetricsPort, source string) *SearchPropertiesUseCase {
	return &SearchPropertiesUseCase{storage: storage, metrics: metrics, source: source}
}

func (uc *SearchPropertiesUseCase) Execute(ctx context.Context, raw search.RawFilters) (*domain.SearchResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "SearchProperties",
		"source":   uc.source,
	})

	ucLogger.Info("Use case started", nil)

	spec, err := search.Validate(raw)
	if err != nil {
		ucLogger.Warn("Filters rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	plan := search.Compile(spec)
	ucLogger.Debug("Filters compiled", port.Fields{
		"predicates": len(plan.Predicates),
		"sort_by":    plan.Sort.Field,
		"sort_order": plan.Sort.Order,
		"page":       plan.Page.Page,
		"limit":      plan.Page.Limit,
	})

	result, err := uc.storage.Search(ctx, plan)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("search properties: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.ObserveSearch(uc.source, result.Total, len(result.Data))
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_found":   result.Total,
		"items_on_page": len(result.Data),
	})

	return result, nil
}
