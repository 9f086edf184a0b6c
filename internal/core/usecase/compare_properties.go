package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
)

const (
	minComparedProperties = 2
	maxComparedProperties = 3
)

type ComparePropertiesUseCase struct{}

func NewComparePropertiesUseCase() *ComparePropertiesUseCase {
	return &ComparePropertiesUseCase{}
}

func (uc *ComparePropertiesUseCase) Execute(ctx context.Context, items []domain.ComparisonItem) (*domain.ComparisonResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "CompareProperties",
		"count":    len(items),
	})

	if len(items) < minComparedProperties || len(items) > maxComparedProperties {
		return nil, domain.NewValidationError("properties", "can only compare %d-%d properties, got %d",
			minComparedProperties, maxComparedProperties, len(items))
	}
	for i, item := range items {
		if item.Area <= 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("properties[%d].area", i), "must be > 0")
		}
		if item.Price < 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("properties[%d].price", i), "must be >= 0")
		}
	}

	result := &domain.ComparisonResult{
		Properties:      make([]domain.ComparedProperty, 0, len(items)),
		Metrics:         comparisonMetrics(items),
		Recommendations: comparisonRecommendations(items),
	}
	for _, item := range items {
		result.Properties = append(result.Properties, domain.ComparedProperty{
			ID:             item.ID,
			Title:          item.Title,
			Price:          item.Price,
			Area:           item.Area,
			Bedrooms:       item.Bedrooms,
			Bathrooms:      item.Bathrooms,
			PricePerSqm:    round(pricePerSqm(item)),
			YearBuilt:      item.YearBuilt,
			HasElevator:    item.HasElevator,
			HasParking:     item.ParkingSpaces > 0,
			HasBalcony:     item.HasBalcony,
			HasStorage:     item.HasStorage,
			AmenitiesCount: len(item.Amenities),
			Location:       strings.Trim(item.City+", "+item.District, ", "),
			AgentName:      item.AgentName,
		})
	}

	ucLogger.Info("Properties compared", nil)
	return result, nil
}

func pricePerSqm(item domain.ComparisonItem) float64 {
	return float64(item.Price) / float64(item.Area)
}

func statRange(values []float64) domain.StatRange {
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	return domain.StatRange{
		Min: round(lo),
		Max: round(hi),
		Avg: round(sum / float64(len(values))),
	}
}

func comparisonMetrics(items []domain.ComparisonItem) domain.ComparisonMetrics {
	prices := make([]float64, 0, len(items))
	areas := make([]float64, 0, len(items))
	perSqm := make([]float64, 0, len(items))
	yearSum, yearCount := 0, 0
	for _, item := range items {
		prices = append(prices, float64(item.Price))
		areas = append(areas, float64(item.Area))
		perSqm = append(perSqm, pricePerSqm(item))
		if item.YearBuilt != nil {
			yearSum += *item.YearBuilt
			yearCount++
		}
	}

	metrics := domain.ComparisonMetrics{
		PriceRange:       statRange(prices),
		AreaRange:        statRange(areas),
		PricePerSqmRange: statRange(perSqm),
	}
	if yearCount > 0 {
		avg := int(math.Round(float64(yearSum) / float64(yearCount)))
		metrics.AvgYearBuilt = &avg
	}
	return metrics
}

// comparisonRecommendations: при равенстве выигрывает объект, идущий раньше.
func comparisonRecommendations(items []domain.ComparisonItem) []string {
	best, largest, richest := 0, 0, 0
	newest := -1
	for i, item := range items {
		if pricePerSqm(item) < pricePerSqm(items[best]) {
			best = i
		}
		if item.Area > items[largest].Area {
			largest = i
		}
		if len(item.Amenities) > len(items[richest].Amenities) {
			richest = i
		}
		if item.YearBuilt != nil && (newest < 0 || *item.YearBuilt > *items[newest].YearBuilt) {
			newest = i
		}
	}

	recs := []string{fmt.Sprintf("Best value: %s", items[best].Title)}
	if newest >= 0 {
		recs = append(recs, fmt.Sprintf("Newest building: %s (%d)", items[newest].Title, *items[newest].YearBuilt))
	}
	recs = append(recs,
		fmt.Sprintf("Largest area: %s (%d m²)", items[largest].Title, items[largest].Area),
		fmt.Sprintf("Most amenities: %s (%d amenities)", items[richest].Title, len(items[richest].Amenities)),
	)
	return recs
}
