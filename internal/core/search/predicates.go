package search

import (
	"strings"

	"golang.org/x/text/cases"

	"search-service/internal/core/domain"
)

// Имена полей фильтра. Они же ключи RawFilters и имена в ValidationError.
const (
	FieldQuery         = "query"
	FieldPropertyType  = "propertyType"
	FieldListingType   = "listingType"
	FieldMinPrice      = "minPrice"
	FieldMaxPrice      = "maxPrice"
	FieldMinArea       = "minArea"
	FieldMaxArea       = "maxArea"
	FieldBedrooms      = "bedrooms"
	FieldBathrooms     = "bathrooms"
	FieldCity          = "city"
	FieldDistrict      = "district"
	FieldAmenities     = "amenities"
	FieldHasElevator   = "hasElevator"
	FieldHasParking    = "hasParking"
	FieldHasBalcony    = "hasBalcony"
	FieldHasStorage    = "hasStorage"
	FieldIsFeatured    = "isFeatured"
	FieldPage          = "page"
	FieldLimit         = "limit"
	FieldSortBy        = "sortBy"
	FieldSortOrder     = "sortOrder"
	FieldPrice         = "price"
	FieldArea          = "area"
	FieldPropertyViews = "views"
	FieldCreatedAt     = "createdAt"
)

// Predicate - одна булева проверка над Property.
// Реализации не имеют побочных эффектов и не зависят от порядка применения.
type Predicate interface {
	Field() string
	Match(p domain.Property) bool
}

func fold(s string) string {
	// cases.Caser хранит состояние, поэтому создается на каждый вызов
	return cases.Fold().String(s)
}

func containsFold(haystack, foldedNeedle string) bool {
	return strings.Contains(fold(haystack), foldedNeedle)
}

// TextPredicate - подстрока в title, description или address.
type TextPredicate struct {
	Query  string
	folded string
}

func NewTextPredicate(query string) TextPredicate {
	return TextPredicate{Query: query, folded: fold(query)}
}

func (t TextPredicate) Field() string { return FieldQuery }

func (t TextPredicate) Match(p domain.Property) bool {
	needle := t.folded
	if needle == "" {
		needle = fold(t.Query)
	}
	return containsFold(p.Title, needle) ||
		containsFold(p.Description, needle) ||
		containsFold(p.Address, needle)
}

// PropertyTypePredicate - тип объекта входит в множество.
type PropertyTypePredicate struct {
	Types []domain.PropertyType
}

func (t PropertyTypePredicate) Field() string { return FieldPropertyType }

func (t PropertyTypePredicate) Match(p domain.Property) bool {
	for _, pt := range t.Types {
		if p.PropertyType == pt {
			return true
		}
	}
	return false
}

type ListingTypePredicate struct {
	Type domain.ListingType
}

func (t ListingTypePredicate) Field() string { return FieldListingType }

func (t ListingTypePredicate) Match(p domain.Property) bool {
	return p.ListingType == t.Type
}

// RangePredicate - включительный диапазон, любая граница может отсутствовать.
type RangePredicate struct {
	Name string // FieldPrice или FieldArea
	Min  *float64
	Max  *float64
}

func (r RangePredicate) Field() string { return r.Name }

func (r RangePredicate) Match(p domain.Property) bool {
	var v float64
	switch r.Name {
	case FieldPrice:
		v = float64(p.Price)
	case FieldArea:
		v = float64(p.Area)
	default:
		return false
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// IntSetPredicate - IN-фильтр по целочисленному полю.
type IntSetPredicate struct {
	Name   string // FieldBedrooms или FieldBathrooms
	Values []int
}

func (s IntSetPredicate) Field() string { return s.Name }

func (s IntSetPredicate) Match(p domain.Property) bool {
	var v int
	switch s.Name {
	case FieldBedrooms:
		v = p.Bedrooms
	case FieldBathrooms:
		v = p.Bathrooms
	default:
		return false
	}
	for _, want := range s.Values {
		if v == want {
			return true
		}
	}
	return false
}

// ContainsPredicate - регистронезависимая подстрока в city или district.
type ContainsPredicate struct {
	Name   string // FieldCity или FieldDistrict
	Needle string
	folded string
}

func NewContainsPredicate(name, needle string) ContainsPredicate {
	return ContainsPredicate{Name: name, Needle: needle, folded: fold(needle)}
}

func (c ContainsPredicate) Field() string { return c.Name }

func (c ContainsPredicate) Match(p domain.Property) bool {
	needle := c.folded
	if needle == "" {
		needle = fold(c.Needle)
	}
	switch c.Name {
	case FieldCity:
		return containsFold(p.City, needle)
	case FieldDistrict:
		return containsFold(p.District, needle)
	}
	return false
}

// AmenitiesPredicate - у объекта есть хотя бы одно из удобств.
type AmenitiesPredicate struct {
	Amenities []string
}

func (a AmenitiesPredicate) Field() string { return FieldAmenities }

func (a AmenitiesPredicate) Match(p domain.Property) bool {
	for _, have := range p.Amenities {
		for _, want := range a.Amenities {
			if have == want {
				return true
			}
		}
	}
	return false
}

// FlagPredicate требует, чтобы флаг был true. Создается только для флагов,
// явно включенных в фильтре.
type FlagPredicate struct {
	Name string
}

func (f FlagPredicate) Field() string { return f.Name }

func (f FlagPredicate) Match(p domain.Property) bool {
	switch f.Name {
	case FieldHasElevator:
		return p.HasElevator
	case FieldHasParking:
		return p.ParkingSpaces > 0
	case FieldHasBalcony:
		return p.HasBalcony
	case FieldHasStorage:
		return p.HasStorage
	case FieldIsFeatured:
		return p.IsFeatured
	}
	return false
}
