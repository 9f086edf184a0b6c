package search

import (
	"sort"

	"search-service/internal/core/domain"
)

// Matches - объект входит в область поиска и проходит все предикаты.
func (p Plan) Matches(prop domain.Property) bool {
	if prop.Status != p.Status {
		return false
	}
	for _, pred := range p.Predicates {
		if !pred.Match(prop) {
			return false
		}
	}
	return true
}

// Assemble применяет план к коллекции: фильтрация, устойчивая сортировка,
// пагинация. Коллекция не изменяется.
func Assemble(plan Plan, collection []domain.Property) domain.SearchResult {
	matched := make([]domain.Property, 0)
	for _, prop := range collection {
		if plan.Matches(prop) {
			matched = append(matched, prop)
		}
	}

	SortProperties(matched, plan.Sort)

	total := len(matched)
	page := make([]domain.Property, 0, plan.Page.Limit)
	if skip := plan.Page.Offset(); skip < total {
		end := skip + plan.Page.Limit
		if end > total {
			end = total
		}
		page = append(page, matched[skip:end]...)
	}

	return domain.NewSearchResult(page, total, plan.Page.Page, plan.Page.Limit)
}

// SortProperties сортирует на месте. При равенстве ключей сохраняется
// исходный порядок.
func SortProperties(props []domain.Property, directive SortDirective) {
	desc := directive.Order == domain.SortDesc
	field := ResolveSortField(directive.Field)
	sort.SliceStable(props, func(i, j int) bool {
		c := compareByField(props[i], props[j], field)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareByField(a, b domain.Property, field string) int {
	switch field {
	case FieldPrice:
		return compareInt64(a.Price, b.Price)
	case FieldArea:
		return compareInt64(int64(a.Area), int64(b.Area))
	case FieldPropertyViews:
		return compareInt64(a.Views, b.Views)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
