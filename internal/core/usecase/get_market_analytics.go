package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
)

type GetMarketAnalyticsUseCase struct {
	storage port.PropertyStoragePort
	now     func() time.Time
}

func NewGetMarketAnalyticsUseCase(storage port.PropertyStoragePort) *GetMarketAnalyticsUseCase {
	return &GetMarketAnalyticsUseCase{storage: storage, now: time.Now}
}

// Execute собирает сводку по активным объектам города и района.
// Динамика цен берется за последние domain.PriceTrendMonths месяцев.
func (uc *GetMarketAnalyticsUseCase) Execute(ctx context.Context, city, district string) (*domain.MarketAnalytics, error) {
	scope := domain.MarketScope{
		City:     strings.TrimSpace(city),
		District: strings.TrimSpace(district),
		Since:    uc.now().UTC().AddDate(0, -domain.PriceTrendMonths, 0),
	}

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetMarketAnalytics",
		"city":     scope.City,
		"district": scope.District,
	})

	ucLogger.Info("Use case started", nil)

	stats, err := uc.storage.GetMarketStats(ctx, scope)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("get market stats: %w", err)
	}

	result := &domain.MarketAnalytics{
		City:             scope.City,
		District:         scope.District,
		AvgPricesByType:  make([]domain.TypePriceStat, 0, len(stats.ByType)),
		PriceTrends:      make([]domain.MonthlyPriceStat, 0, len(stats.Monthly)),
		PopularAreas:     make([]domain.AreaStat, 0, len(stats.Areas)),
		TypeDistribution: make([]domain.TypeShare, 0, len(stats.ByType)),
	}
	for _, s := range stats.ByType {
		result.TotalListings += s.Count
	}
	for _, s := range stats.ByType {
		s.AvgPrice = math.Round(s.AvgPrice)
		result.AvgPricesByType = append(result.AvgPricesByType, s)

		share := domain.TypeShare{Type: s.Type, Count: s.Count}
		if result.TotalListings > 0 {
			share.Percent = math.Round(float64(s.Count)*1000/float64(result.TotalListings)) / 10
		}
		result.TypeDistribution = append(result.TypeDistribution, share)
	}
	for _, s := range stats.Monthly {
		s.AvgPrice = math.Round(s.AvgPrice)
		result.PriceTrends = append(result.PriceTrends, s)
	}
	for _, s := range stats.Areas {
		s.AvgPrice = math.Round(s.AvgPrice)
		result.PopularAreas = append(result.PopularAreas, s)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_listings": result.TotalListings,
		"areas":          len(result.PopularAreas),
	})
	return result, nil
}
