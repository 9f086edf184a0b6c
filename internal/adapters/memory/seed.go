package memory

import (
	"fmt"
	"os"
	"time"

	"search-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Properties []seedProperty `yaml:"properties"`
}

type seedProperty struct {
	ID            string    `yaml:"id"`
	Title         string    `yaml:"title"`
	Description   string    `yaml:"description"`
	PropertyType  string    `yaml:"property_type"`
	ListingType   string    `yaml:"listing_type"`
	Status        string    `yaml:"status"`
	Price         int64     `yaml:"price"`
	Area          int       `yaml:"area"`
	Bedrooms      int       `yaml:"bedrooms"`
	Bathrooms     int       `yaml:"bathrooms"`
	ParkingSpaces int       `yaml:"parking_spaces"`
	YearBuilt     *int      `yaml:"year_built"`
	HasElevator   bool      `yaml:"has_elevator"`
	HasBalcony    bool      `yaml:"has_balcony"`
	HasStorage    bool      `yaml:"has_storage"`
	IsFeatured    bool      `yaml:"is_featured"`
	City          string    `yaml:"city"`
	District      string    `yaml:"district"`
	Address       string    `yaml:"address"`
	Latitude      *float64  `yaml:"latitude"`
	Longitude     *float64  `yaml:"longitude"`
	Amenities     []string  `yaml:"amenities"`
	Views         int64     `yaml:"views"`
	CreatedAt     time.Time `yaml:"created_at"`
}

// LoadSeedFile читает YAML-файл с начальными объектами.
func LoadSeedFile(path string) ([]domain.Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return ParseSeed(data, time.Now().UTC())
}

// ParseSeed разбирает YAML. Пустые id, статус и дата создания
// заполняются значениями по умолчанию.
func ParseSeed(data []byte, now time.Time) ([]domain.Property, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	out := make([]domain.Property, 0, len(file.Properties))
	for i, dto := range file.Properties {
		p, err := dto.toDomain(now)
		if err != nil {
			return nil, fmt.Errorf("seed property #%d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (dto seedProperty) toDomain(now time.Time) (domain.Property, error) {
	id := uuid.New()
	if dto.ID != "" {
		parsed, err := uuid.Parse(dto.ID)
		if err != nil {
			return domain.Property{}, fmt.Errorf("invalid id %q: %w", dto.ID, err)
		}
		id = parsed
	}

	pt, ok := domain.ParsePropertyType(dto.PropertyType)
	if !ok {
		return domain.Property{}, fmt.Errorf("unknown property type %q", dto.PropertyType)
	}
	lt, ok := domain.ParseListingType(dto.ListingType)
	if !ok {
		return domain.Property{}, fmt.Errorf("unknown listing type %q", dto.ListingType)
	}
	status := domain.StatusActive
	if dto.Status != "" {
		if status, ok = domain.ParsePropertyStatus(dto.Status); !ok {
			return domain.Property{}, fmt.Errorf("unknown status %q", dto.Status)
		}
	}
	if dto.Price < 0 || dto.Area <= 0 {
		return domain.Property{}, fmt.Errorf("price must be >= 0 and area > 0")
	}

	createdAt := dto.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	p := domain.Property{
		ID:            id,
		Title:         dto.Title,
		Description:   dto.Description,
		PropertyType:  pt,
		ListingType:   lt,
		Status:        status,
		Price:         dto.Price,
		Area:          dto.Area,
		Bedrooms:      dto.Bedrooms,
		Bathrooms:     dto.Bathrooms,
		ParkingSpaces: dto.ParkingSpaces,
		YearBuilt:     dto.YearBuilt,
		HasElevator:   dto.HasElevator,
		HasBalcony:    dto.HasBalcony,
		HasStorage:    dto.HasStorage,
		IsFeatured:    dto.IsFeatured,
		City:          dto.City,
		District:      dto.District,
		Address:       dto.Address,
		Latitude:      dto.Latitude,
		Longitude:     dto.Longitude,
		Amenities:     dto.Amenities,
		Views:         dto.Views,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	if p.HasCoordinates() {
		p.Geohash = geohash.Encode(*p.Latitude, *p.Longitude)
	}
	return p, nil
}
