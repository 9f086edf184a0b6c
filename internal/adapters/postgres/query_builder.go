package postgres

import (
	"fmt"
	"strings"

	"search-service/internal/core/domain"
	"search-service/internal/core/search"
)

// Разрешенные колонки. Имена полей фильтра никогда не попадают в SQL напрямую.
var filterColumns = map[string]string{
	search.FieldPrice:     "p.price",
	search.FieldArea:      "p.area",
	search.FieldBedrooms:  "p.bedrooms",
	search.FieldBathrooms: "p.bathrooms",
	search.FieldCity:      "p.city",
	search.FieldDistrict:  "p.district",
}

var flagColumns = map[string]string{
	search.FieldHasElevator: "p.has_elevator = TRUE",
	search.FieldHasParking:  "p.parking_spaces > 0",
	search.FieldHasBalcony:  "p.has_balcony = TRUE",
	search.FieldHasStorage:  "p.has_storage = TRUE",
	search.FieldIsFeatured:  "p.is_featured = TRUE",
}

var sortColumns = map[string]string{
	search.FieldCreatedAt:     "p.created_at",
	search.FieldPrice:         "p.price",
	search.FieldArea:          "p.area",
	search.FieldPropertyViews: "p.views",
}

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder(status domain.PropertyStatus) *queryBuilder {
	qb := &queryBuilder{
		argId: 1,
		args:  make([]interface{}, 0),
	}
	qb.addCondition("%s = $%d", "p.status", string(status))
	return qb
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

func (qb *queryBuilder) addRange(fieldName string, min, max *float64) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

func (qb *queryBuilder) build() (string, []interface{}) {
	return "WHERE " + strings.Join(qb.conditions, " AND "), qb.args
}

// applyPlan рендерит базовую область и предикаты плана в WHERE.
func applyPlan(plan search.Plan) (string, []interface{}, error) {
	qb := newQueryBuilder(plan.Status)

	for _, pred := range plan.Predicates {
		switch p := pred.(type) {
		case search.TextPredicate:
			pattern := likePattern(p.Query)
			qb.conditions = append(qb.conditions, fmt.Sprintf(
				"(p.title ILIKE $%d OR p.description ILIKE $%d OR p.address ILIKE $%d)",
				qb.argId, qb.argId, qb.argId,
			))
			qb.args = append(qb.args, pattern)
			qb.argId++
		case search.PropertyTypePredicate:
			types := make([]string, 0, len(p.Types))
			for _, t := range p.Types {
				types = append(types, string(t))
			}
			qb.addCondition("%s = ANY($%d)", "p.property_type", types)
		case search.ListingTypePredicate:
			qb.addCondition("%s = $%d", "p.listing_type", string(p.Type))
		case search.RangePredicate:
			col, ok := filterColumns[p.Name]
			if !ok {
				return "", nil, fmt.Errorf("unsupported range field %q", p.Name)
			}
			qb.addRange(col, p.Min, p.Max)
		case search.IntSetPredicate:
			col, ok := filterColumns[p.Name]
			if !ok {
				return "", nil, fmt.Errorf("unsupported set field %q", p.Name)
			}
			qb.addCondition("%s = ANY($%d)", col, p.Values)
		case search.ContainsPredicate:
			col, ok := filterColumns[p.Name]
			if !ok {
				return "", nil, fmt.Errorf("unsupported text field %q", p.Name)
			}
			qb.addCondition("%s ILIKE $%d", col, likePattern(p.Needle))
		case search.AmenitiesPredicate:
			// пересечение массивов: есть хотя бы одно удобство
			qb.addCondition("%s && $%d", "p.amenities", p.Amenities)
		case search.FlagPredicate:
			cond, ok := flagColumns[p.Name]
			if !ok {
				return "", nil, fmt.Errorf("unsupported flag %q", p.Name)
			}
			qb.conditions = append(qb.conditions, cond)
		default:
			return "", nil, fmt.Errorf("unsupported predicate %T", pred)
		}
	}

	where, args := qb.build()
	return where, args, nil
}

// orderClause - сортировка из белого списка. Равные ключи упорядочены
// по времени создания, затем по id.
func orderClause(sort search.SortDirective) string {
	col, ok := sortColumns[search.ResolveSortField(sort.Field)]
	if !ok {
		col = sortColumns[search.FieldCreatedAt]
	}
	dir := "DESC"
	if sort.Order == domain.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, p.created_at ASC, p.id ASC", col, dir)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
