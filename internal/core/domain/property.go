package domain

import (
	"time"

	"github.com/google/uuid"
)

// PropertyType - тип объекта недвижимости.
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeOffice     PropertyType = "office"
)

// PropertyTypes - закрытый список распознаваемых типов.
var PropertyTypes = []PropertyType{
	PropertyTypeApartment,
	PropertyTypeVilla,
	PropertyTypeCommercial,
	PropertyTypeLand,
	PropertyTypeOffice,
}

func ParsePropertyType(s string) (PropertyType, bool) {
	for _, t := range PropertyTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ListingType - тип сделки.
type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

func ParseListingType(s string) (ListingType, bool) {
	switch ListingType(s) {
	case ListingTypeSale, ListingTypeRent:
		return ListingType(s), true
	}
	return "", false
}

// PropertyStatus - жизненный цикл объявления.
type PropertyStatus string

const (
	StatusActive   PropertyStatus = "active"
	StatusPending  PropertyStatus = "pending"
	StatusSold     PropertyStatus = "sold"
	StatusRented   PropertyStatus = "rented"
	StatusInactive PropertyStatus = "inactive"
)

func ParsePropertyStatus(s string) (PropertyStatus, bool) {
	switch PropertyStatus(s) {
	case StatusActive, StatusPending, StatusSold, StatusRented, StatusInactive:
		return PropertyStatus(s), true
	}
	return "", false
}

// IsTerminal - проданный или сданный объект обратно не активируется.
func (s PropertyStatus) IsTerminal() bool {
	return s == StatusSold || s == StatusRented
}

// CanTransitionTo проверяет допустимость перехода статуса.
func (s PropertyStatus) CanTransitionTo(next PropertyStatus) bool {
	if _, ok := ParsePropertyStatus(string(next)); !ok {
		return false
	}
	if s == next {
		return true
	}
	return !s.IsTerminal()
}

// Property - единица поиска.
type Property struct {
	ID            uuid.UUID
	Title         string
	Description   string
	PropertyType  PropertyType
	ListingType   ListingType
	Status        PropertyStatus
	Price         int64
	Area          int
	Bedrooms      int
	Bathrooms     int
	ParkingSpaces int
	YearBuilt     *int
	HasElevator   bool
	HasBalcony    bool
	HasStorage    bool
	IsFeatured    bool

	City      string
	District  string
	Address   string
	Latitude  *float64
	Longitude *float64
	Geohash   string

	Amenities []string
	Views     int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCoordinates - у объекта заданы обе координаты.
func (p Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// NewPropertyInput - данные для создания объявления.
type NewPropertyInput struct {
	Title         string
	Description   string
	PropertyType  string
	ListingType   string
	Price         int64
	Area          int
	Bedrooms      int
	Bathrooms     int
	ParkingSpaces int
	YearBuilt     *int
	HasElevator   bool
	HasBalcony    bool
	HasStorage    bool
	IsFeatured    bool
	City          string
	District      string
	Address       string
	Latitude      *float64
	Longitude     *float64
	Amenities     []string

	// SourceKey - стабильный ключ объявления во внешнем источнике.
	// Если задан, id объекта выводится из него, и повторная доставка
	// того же объявления дает тот же id.
	SourceKey string
}

// listingNamespace - пространство имен UUIDv5 для объявлений из внешних источников.
var listingNamespace = uuid.MustParse("6f1c2a4e-9b3d-5e7f-8a1b-2c3d4e5f6a7b")

// PropertyIDFromSourceKey возвращает детерминированный id объявления.
func PropertyIDFromSourceKey(key string) uuid.UUID {
	return uuid.NewSHA1(listingNamespace, []byte(key))
}

// PropertyView - запись о просмотре карточки объекта.
type PropertyView struct {
	PropertyID uuid.UUID
	UserID     *uuid.UUID
	IPAddress  string
	UserAgent  string
	ViewedAt   time.Time
}

// Locations - справочник городов и районов.
type Locations struct {
	Cities    []string
	Districts []string
}

// NearbyQuery - параметры поиска по радиусу.
type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
}

// Viewer - кто открыл карточку объекта.
type Viewer struct {
	UserID    *uuid.UUID
	IPAddress string
	UserAgent string
}

// SimilarCriteria - параметры подбора похожих объектов.
type SimilarCriteria struct {
	ExcludeID    uuid.UUID
	PropertyType PropertyType
	City         string
	TargetPrice  int64
	PriceMin     int64
	PriceMax     int64
	Limit        int
}
