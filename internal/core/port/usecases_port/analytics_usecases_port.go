package usecases_port

import (
	"context"

	"search-service/internal/core/domain"
)

type GetMarketAnalyticsUseCase interface {
	Execute(ctx context.Context, city, district string) (*domain.MarketAnalytics, error)
}
