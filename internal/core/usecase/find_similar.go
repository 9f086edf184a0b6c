package usecase

import (
	"context"
	"fmt"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
)

const (
	defaultSimilarLimit = 6
	maxSimilarLimit     = 20
	// допуск по цене для похожих объектов, в процентах
	similarPriceTolerance = 30
)

type FindSimilarUseCase struct {
	storage port.PropertyStoragePort
}

func NewFindSimilarUseCase(storage port.PropertyStoragePort) *FindSimilarUseCase {
	return &FindSimilarUseCase{storage: storage}
}

// Execute ищет активные объекты того же типа в том же городе с ценой
// в пределах ±30%, ближайшие по цене первыми.
func (uc *FindSimilarUseCase) Execute(ctx context.Context, propertyID uuid.UUID, limit int) ([]domain.Property, error) {
	if limit <= 0 || limit > maxSimilarLimit {
		limit = defaultSimilarLimit
	}

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "FindSimilar",
		"property_id": propertyID.String(),
		"limit":       limit,
	})

	ucLogger.Info("Use case started", nil)

	property, err := uc.storage.GetByID(ctx, propertyID)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("get property %s: %w", propertyID, err)
	}

	criteria := similarCriteriaFor(*property, limit)
	similar, err := uc.storage.FindSimilar(ctx, criteria)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("find similar to %s: %w", propertyID, err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"found": len(similar)})
	return similar, nil
}

func similarCriteriaFor(p domain.Property, limit int) domain.SimilarCriteria {
	delta := p.Price * similarPriceTolerance / 100
	return domain.SimilarCriteria{
		ExcludeID:    p.ID,
		PropertyType: p.PropertyType,
		City:         p.City,
		TargetPrice:  p.Price,
		PriceMin:     p.Price - delta,
		PriceMax:     p.Price + delta,
		Limit:        limit,
	}
}
