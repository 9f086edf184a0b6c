package search

import (
	"search-service/internal/core/domain"
)

// SortableFields - поля, по которым разрешена сортировка.
var SortableFields = []string{FieldCreatedAt, FieldPrice, FieldArea, FieldPropertyViews}

// ResolveSortField возвращает поле сортировки или значение по умолчанию,
// если поле не входит в SortableFields.
func ResolveSortField(sortBy string) string {
	for _, f := range SortableFields {
		if f == sortBy {
			return f
		}
	}
	return domain.DefaultSortBy
}

type SortDirective struct {
	Field string
	Order domain.SortOrder
}

type PageDirective struct {
	Page  int
	Limit int
}

func (p PageDirective) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Plan - результат компиляции фильтра.
// Status применяется как базовая область поиска до предикатов.
type Plan struct {
	Status     domain.PropertyStatus
	Predicates []Predicate
	Sort       SortDirective
	Page       PageDirective
}

// Compile превращает FilterSpec в план. Каждое активное поле дает ровно
// один предикат, фильтр без ограничений дает пустой список.
// Дешевые проверки идут первыми.
func Compile(spec domain.FilterSpec) Plan {
	plan := Plan{
		Status:     spec.Status,
		Predicates: make([]Predicate, 0),
		Sort: SortDirective{
			Field: ResolveSortField(spec.SortBy),
			Order: spec.SortOrder,
		},
		Page: PageDirective{Page: spec.Page, Limit: spec.Limit},
	}
	if plan.Status == "" {
		plan.Status = domain.StatusActive
	}
	if plan.Sort.Order != domain.SortAsc {
		plan.Sort.Order = domain.SortDesc
	}
	if plan.Page.Page < 1 {
		plan.Page.Page = domain.DefaultPage
	}
	if plan.Page.Limit < 1 || plan.Page.Limit > domain.MaxLimit {
		plan.Page.Limit = domain.DefaultLimit
	}

	add := func(p Predicate) { plan.Predicates = append(plan.Predicates, p) }

	if spec.HasElevator {
		add(FlagPredicate{Name: FieldHasElevator})
	}
	if spec.HasParking {
		add(FlagPredicate{Name: FieldHasParking})
	}
	if spec.HasBalcony {
		add(FlagPredicate{Name: FieldHasBalcony})
	}
	if spec.HasStorage {
		add(FlagPredicate{Name: FieldHasStorage})
	}
	if spec.IsFeatured {
		add(FlagPredicate{Name: FieldIsFeatured})
	}
	if spec.ListingType != "" {
		add(ListingTypePredicate{Type: spec.ListingType})
	}
	if len(spec.PropertyTypes) > 0 {
		add(PropertyTypePredicate{Types: spec.PropertyTypes})
	}
	if spec.PriceMin != nil || spec.PriceMax != nil {
		add(RangePredicate{Name: FieldPrice, Min: spec.PriceMin, Max: spec.PriceMax})
	}
	if spec.AreaMin != nil || spec.AreaMax != nil {
		add(RangePredicate{Name: FieldArea, Min: spec.AreaMin, Max: spec.AreaMax})
	}
	if len(spec.Bedrooms) > 0 {
		add(IntSetPredicate{Name: FieldBedrooms, Values: spec.Bedrooms})
	}
	if len(spec.Bathrooms) > 0 {
		add(IntSetPredicate{Name: FieldBathrooms, Values: spec.Bathrooms})
	}
	if len(spec.Amenities) > 0 {
		add(AmenitiesPredicate{Amenities: spec.Amenities})
	}
	if spec.City != "" {
		add(NewContainsPredicate(FieldCity, spec.City))
	}
	if spec.District != "" {
		add(NewContainsPredicate(FieldDistrict, spec.District))
	}
	if spec.Query != "" {
		add(NewTextPredicate(spec.Query))
	}

	return plan
}

// ActiveFilterCount - число активных фильтров, как их видит компилятор.
func ActiveFilterCount(spec domain.FilterSpec) int {
	return len(Compile(spec).Predicates)
}
