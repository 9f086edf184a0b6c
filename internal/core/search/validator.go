package search

import (
	"strings"

	"search-service/internal/core/domain"
)

// Validate приводит сырые параметры к FilterSpec публичного поиска.
// Отсутствующие поля получают значения по умолчанию, неверные значения
// отклоняются с *domain.ValidationError. Неизвестные ключи игнорируются.
//
// sortBy здесь не проверяется по списку: неизвестное поле заменяет
// на значение по умолчанию компилятор.
func Validate(raw RawFilters) (domain.FilterSpec, error) {
	spec := domain.DefaultFilterSpec()

	if v, ok := raw.lookup(FieldQuery); ok {
		q, err := coerceString(FieldQuery, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		spec.Query = q
	}

	if v, ok := raw.lookup(FieldPropertyType); ok {
		items, err := coerceStringList(FieldPropertyType, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		for _, item := range items {
			pt, ok := domain.ParsePropertyType(item)
			if !ok {
				return domain.FilterSpec{}, domain.NewValidationError(FieldPropertyType, "unknown property type %q", item)
			}
			spec.PropertyTypes = append(spec.PropertyTypes, pt)
		}
	}

	if v, ok := raw.lookup(FieldListingType); ok {
		s, err := coerceString(FieldListingType, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		lt, ok := domain.ParseListingType(s)
		if !ok {
			return domain.FilterSpec{}, domain.NewValidationError(FieldListingType, "unknown listing type %q", s)
		}
		spec.ListingType = lt
	}

	bounds := []struct {
		field string
		dst   **float64
	}{
		{FieldMinPrice, &spec.PriceMin},
		{FieldMaxPrice, &spec.PriceMax},
		{FieldMinArea, &spec.AreaMin},
		{FieldMaxArea, &spec.AreaMax},
	}
	for _, b := range bounds {
		v, ok := raw.lookup(b.field)
		if !ok {
			continue
		}
		f, err := coerceNumber(b.field, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		if f < 0 {
			return domain.FilterSpec{}, domain.NewValidationError(b.field, "must be >= 0, got %v", f)
		}
		*b.dst = &f
	}

	sets := []struct {
		field string
		dst   *[]int
	}{
		{FieldBedrooms, &spec.Bedrooms},
		{FieldBathrooms, &spec.Bathrooms},
	}
	for _, s := range sets {
		v, ok := raw.lookup(s.field)
		if !ok {
			continue
		}
		values, err := coerceIntList(s.field, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		for _, n := range values {
			if n < 0 {
				return domain.FilterSpec{}, domain.NewValidationError(s.field, "must be >= 0, got %d", n)
			}
		}
		*s.dst = values
	}

	locations := []struct {
		field string
		dst   *string
	}{
		{FieldCity, &spec.City},
		{FieldDistrict, &spec.District},
	}
	for _, l := range locations {
		v, ok := raw.lookup(l.field)
		if !ok {
			continue
		}
		s, err := coerceString(l.field, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		*l.dst = s
	}

	if v, ok := raw.lookup(FieldAmenities); ok {
		items, err := coerceStringList(FieldAmenities, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		spec.Amenities = items
	}

	flags := []struct {
		field string
		dst   *bool
	}{
		{FieldHasElevator, &spec.HasElevator},
		{FieldHasParking, &spec.HasParking},
		{FieldHasBalcony, &spec.HasBalcony},
		{FieldHasStorage, &spec.HasStorage},
		{FieldIsFeatured, &spec.IsFeatured},
	}
	for _, f := range flags {
		v, ok := raw.lookup(f.field)
		if !ok {
			continue
		}
		b, err := coerceBool(f.field, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		*f.dst = b
	}

	if v, ok := raw.lookup(FieldPage); ok {
		page, err := coerceInt(FieldPage, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		if page < 1 {
			return domain.FilterSpec{}, domain.NewValidationError(FieldPage, "must be >= 1, got %d", page)
		}
		spec.Page = page
	}

	if v, ok := raw.lookup(FieldLimit); ok {
		limit, err := coerceInt(FieldLimit, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		if limit < 1 || limit > domain.MaxLimit {
			return domain.FilterSpec{}, domain.NewValidationError(FieldLimit, "must be between 1 and %d, got %d", domain.MaxLimit, limit)
		}
		spec.Limit = limit
	}

	if v, ok := raw.lookup(FieldSortBy); ok {
		s, err := coerceString(FieldSortBy, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		spec.SortBy = s
	}

	if v, ok := raw.lookup(FieldSortOrder); ok {
		s, err := coerceString(FieldSortOrder, v)
		if err != nil {
			return domain.FilterSpec{}, err
		}
		order, ok := domain.ParseSortOrder(strings.ToUpper(s))
		if !ok {
			return domain.FilterSpec{}, domain.NewValidationError(FieldSortOrder, "must be ASC or DESC, got %q", s)
		}
		spec.SortOrder = order
	}

	return spec, nil
}
