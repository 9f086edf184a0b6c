package search

import (
	"search-service/internal/core/domain"
)

// ToRawFilters - обратное к Validate: только поля, отличные от значений
// по умолчанию. Validate(ToRawFilters(spec)) дает исходную спецификацию.
func ToRawFilters(spec domain.FilterSpec) RawFilters {
	raw := RawFilters{}
	def := domain.DefaultFilterSpec()

	if spec.Query != "" {
		raw[FieldQuery] = spec.Query
	}
	if len(spec.PropertyTypes) > 0 {
		types := make([]string, 0, len(spec.PropertyTypes))
		for _, t := range spec.PropertyTypes {
			types = append(types, string(t))
		}
		raw[FieldPropertyType] = types
	}
	if spec.ListingType != "" {
		raw[FieldListingType] = string(spec.ListingType)
	}
	if spec.PriceMin != nil {
		raw[FieldMinPrice] = *spec.PriceMin
	}
	if spec.PriceMax != nil {
		raw[FieldMaxPrice] = *spec.PriceMax
	}
	if spec.AreaMin != nil {
		raw[FieldMinArea] = *spec.AreaMin
	}
	if spec.AreaMax != nil {
		raw[FieldMaxArea] = *spec.AreaMax
	}
	if len(spec.Bedrooms) > 0 {
		raw[FieldBedrooms] = append([]int(nil), spec.Bedrooms...)
	}
	if len(spec.Bathrooms) > 0 {
		raw[FieldBathrooms] = append([]int(nil), spec.Bathrooms...)
	}
	if spec.City != "" {
		raw[FieldCity] = spec.City
	}
	if spec.District != "" {
		raw[FieldDistrict] = spec.District
	}
	if len(spec.Amenities) > 0 {
		raw[FieldAmenities] = append([]string(nil), spec.Amenities...)
	}
	if spec.HasElevator {
		raw[FieldHasElevator] = true
	}
	if spec.HasParking {
		raw[FieldHasParking] = true
	}
	if spec.HasBalcony {
		raw[FieldHasBalcony] = true
	}
	if spec.HasStorage {
		raw[FieldHasStorage] = true
	}
	if spec.IsFeatured {
		raw[FieldIsFeatured] = true
	}
	if spec.Page != def.Page {
		raw[FieldPage] = spec.Page
	}
	if spec.Limit != def.Limit {
		raw[FieldLimit] = spec.Limit
	}
	if spec.SortBy != def.SortBy {
		raw[FieldSortBy] = spec.SortBy
	}
	if spec.SortOrder != def.SortOrder {
		raw[FieldSortOrder] = string(spec.SortOrder)
	}
	return raw
}
