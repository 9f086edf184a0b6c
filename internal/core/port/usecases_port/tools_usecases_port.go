package usecases_port

import (
	"context"

	"search-service/internal/core/domain"
)

type CalculateMortgageUseCase interface {
	Execute(ctx context.Context, input domain.MortgageInput) (*domain.MortgageResult, error)
}

type ComparePropertiesUseCase interface {
	Execute(ctx context.Context, items []domain.ComparisonItem) (*domain.ComparisonResult, error)
}
