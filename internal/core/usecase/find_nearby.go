package usecase

import (
	"context"
	"fmt"
	"sort"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
)

const (
	defaultNearbyRadiusKm = 5.0
	maxNearbyRadiusKm     = 100.0
	defaultNearbyLimit    = 10
	maxNearbyLimit        = 100
)

type FindNearbyUseCase struct {
	storage port.PropertyStoragePort
}

func NewFindNearbyUseCase(storage port.PropertyStoragePort) *FindNearbyUseCase {
	return &FindNearbyUseCase{storage: storage}
}

// Execute возвращает активные объекты в радиусе, ближайшие первыми.
// Кандидаты выбираются по ячейкам geohash, затем отсекаются по расстоянию.
func (uc *FindNearbyUseCase) Execute(ctx context.Context, query domain.NearbyQuery) ([]domain.Property, error) {
	if query.Latitude < -90 || query.Latitude > 90 {
		return nil, domain.NewValidationError("lat", "must be between -90 and 90")
	}
	if query.Longitude < -180 || query.Longitude > 180 {
		return nil, domain.NewValidationError("lng", "must be between -180 and 180")
	}
	if query.RadiusKm < 0 || query.RadiusKm > maxNearbyRadiusKm {
		return nil, domain.NewValidationError("radius", "must be between 0 and %v", maxNearbyRadiusKm)
	}
	if query.RadiusKm == 0 {
		query.RadiusKm = defaultNearbyRadiusKm
	}
	if query.Limit <= 0 || query.Limit > maxNearbyLimit {
		query.Limit = defaultNearbyLimit
	}

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "FindNearby",
		"lat":       query.Latitude,
		"lng":       query.Longitude,
		"radius_km": query.RadiusKm,
	})

	ucLogger.Info("Use case started", nil)

	cells := coveringCells(query.Latitude, query.Longitude, query.RadiusKm)
	candidates, err := uc.storage.FindInCells(ctx, cells)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("find nearby: %w", err)
	}

	type withDistance struct {
		property domain.Property
		km       float64
	}
	inRadius := make([]withDistance, 0, len(candidates))
	for _, c := range candidates {
		if !c.HasCoordinates() || c.Status != domain.StatusActive {
			continue
		}
		km := haversineKm(query.Latitude, query.Longitude, *c.Latitude, *c.Longitude)
		if km <= query.RadiusKm {
			inRadius = append(inRadius, withDistance{property: c, km: km})
		}
	}
	sort.SliceStable(inRadius, func(i, j int) bool { return inRadius[i].km < inRadius[j].km })

	if len(inRadius) > query.Limit {
		inRadius = inRadius[:query.Limit]
	}
	result := make([]domain.Property, 0, len(inRadius))
	for _, item := range inRadius {
		result = append(result, item.property)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"cells":      len(cells),
		"candidates": len(candidates),
		"found":      len(result),
	})
	return result, nil
}
