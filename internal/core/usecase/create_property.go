package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
)

type CreatePropertyUseCase struct {
	storage port.PropertyStoragePort
}

func NewCreatePropertyUseCase(storage port.PropertyStoragePort) *CreatePropertyUseCase {
	return &CreatePropertyUseCase{storage: storage}
}

func (uc *CreatePropertyUseCase) Execute(ctx context.Context, input domain.NewPropertyInput) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "CreateProperty",
		"city":     input.City,
	})

	ucLogger.Info("Use case started", nil)

	property, err := buildProperty(input, time.Now().UTC())
	if err != nil {
		ucLogger.Warn("Property rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	if err := uc.storage.Create(ctx, property); err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("create property: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"property_id": property.ID.String()})
	return &property, nil
}

// buildProperty проверяет инварианты объекта и заполняет служебные поля.
func buildProperty(input domain.NewPropertyInput, now time.Time) (domain.Property, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Property{}, domain.NewValidationError("title", "must not be empty")
	}
	pt, ok := domain.ParsePropertyType(input.PropertyType)
	if !ok {
		return domain.Property{}, domain.NewValidationError("propertyType", "unknown property type %q", input.PropertyType)
	}
	lt, ok := domain.ParseListingType(input.ListingType)
	if !ok {
		return domain.Property{}, domain.NewValidationError("listingType", "unknown listing type %q", input.ListingType)
	}
	if input.Price < 0 {
		return domain.Property{}, domain.NewValidationError("price", "must be >= 0")
	}
	if input.Area <= 0 {
		return domain.Property{}, domain.NewValidationError("area", "must be > 0")
	}
	counts := []struct {
		field string
		value int
	}{
		{"bedrooms", input.Bedrooms},
		{"bathrooms", input.Bathrooms},
		{"parkingSpaces", input.ParkingSpaces},
	}
	for _, c := range counts {
		if c.value < 0 {
			return domain.Property{}, domain.NewValidationError(c.field, "must be >= 0")
		}
	}
	if strings.TrimSpace(input.City) == "" {
		return domain.Property{}, domain.NewValidationError("city", "must not be empty")
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return domain.Property{}, domain.NewValidationError("latitude", "latitude and longitude must be set together")
	}
	if input.Latitude != nil {
		if *input.Latitude < -90 || *input.Latitude > 90 {
			return domain.Property{}, domain.NewValidationError("latitude", "must be between -90 and 90")
		}
		if *input.Longitude < -180 || *input.Longitude > 180 {
			return domain.Property{}, domain.NewValidationError("longitude", "must be between -180 and 180")
		}
	}

	id := uuid.New()
	if key := strings.TrimSpace(input.SourceKey); key != "" {
		id = domain.PropertyIDFromSourceKey(key)
	}

	property := domain.Property{
		ID:            id,
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		PropertyType:  pt,
		ListingType:   lt,
		Status:        domain.StatusActive,
		Price:         input.Price,
		Area:          input.Area,
		Bedrooms:      input.Bedrooms,
		Bathrooms:     input.Bathrooms,
		ParkingSpaces: input.ParkingSpaces,
		YearBuilt:     input.YearBuilt,
		HasElevator:   input.HasElevator,
		HasBalcony:    input.HasBalcony,
		HasStorage:    input.HasStorage,
		IsFeatured:    input.IsFeatured,
		City:          strings.TrimSpace(input.City),
		District:      strings.TrimSpace(input.District),
		Address:       strings.TrimSpace(input.Address),
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		Amenities:     normalizeAmenities(input.Amenities),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if property.HasCoordinates() {
		property.Geohash = geohash.Encode(*property.Latitude, *property.Longitude)
	}
	return property, nil
}

func normalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
