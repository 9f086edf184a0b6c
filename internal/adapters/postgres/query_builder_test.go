package postgres

import (
	"reflect"
	"strings"
	"testing"

	"search-service/internal/core/domain"
	"search-service/internal/core/search"
)

func ptr(f float64) *float64 { return &f }

func TestApplyPlanEmptySpec(t *testing.T) {
	where, args, err := applyPlan(search.Compile(domain.DefaultFilterSpec()))
	if err != nil {
		t.Fatalf("applyPlan: %v", err)
	}
	if where != "WHERE p.status = $1" {
		t.Fatalf("where = %q", where)
	}
	if !reflect.DeepEqual(args, []interface{}{"active"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestApplyPlanAllPredicates(t *testing.T) {
	spec := domain.DefaultFilterSpec()
	spec.Query = "50%_off"
	spec.PropertyTypes = []domain.PropertyType{domain.PropertyTypeVilla}
	spec.ListingType = domain.ListingTypeRent
	spec.PriceMin = ptr(100)
	spec.AreaMax = ptr(80)
	spec.Bedrooms = []int{2, 3}
	spec.City = "Minsk"
	spec.Amenities = []string{"pool"}
	spec.HasParking = true
	spec.HasElevator = true

	where, args, err := applyPlan(search.Compile(spec))
	if err != nil {
		t.Fatalf("applyPlan: %v", err)
	}

	wantFragments := []string{
		"p.status = $1",
		"p.has_elevator = TRUE",
		"p.parking_spaces > 0",
		"p.listing_type = $2",
		"p.property_type = ANY($3)",
		"p.price >= $4",
		"p.area <= $5",
		"p.bedrooms = ANY($6)",
		"p.amenities && $7",
		"p.city ILIKE $8",
		"(p.title ILIKE $9 OR p.description ILIKE $9 OR p.address ILIKE $9)",
	}
	for _, f := range wantFragments {
		if !strings.Contains(where, f) {
			t.Fatalf("where %q does not contain %q", where, f)
		}
	}
	if len(args) != 9 {
		t.Fatalf("got %d args: %v", len(args), args)
	}
	if args[7] != "%Minsk%" || args[8] != `%50\%\_off%` {
		t.Fatalf("like patterns = %v, %v", args[7], args[8])
	}
	if !reflect.DeepEqual(args[2], []string{"villa"}) {
		t.Fatalf("types arg = %#v", args[2])
	}
}

func TestApplyPlanFeatured(t *testing.T) {
	spec := domain.DefaultFilterSpec()
	spec.IsFeatured = true

	where, args, err := applyPlan(search.Compile(spec))
	if err != nil {
		t.Fatalf("applyPlan: %v", err)
	}
	if !strings.Contains(where, "p.is_featured = TRUE") || len(args) != 1 {
		t.Fatalf("where %q, args %v", where, args)
	}
}

type unknownPredicate struct{}

func (unknownPredicate) Field() string                { return "unknown" }
func (unknownPredicate) Match(p domain.Property) bool { return true }

func TestApplyPlanRejectsUnknownPredicate(t *testing.T) {
	plan := search.Compile(domain.DefaultFilterSpec())
	plan.Predicates = append(plan.Predicates, unknownPredicate{})
	if _, _, err := applyPlan(plan); err == nil {
		t.Fatalf("expected error")
	}

	plan = search.Compile(domain.DefaultFilterSpec())
	plan.Predicates = append(plan.Predicates, search.RangePredicate{Name: "title; DROP TABLE"})
	if _, _, err := applyPlan(plan); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		sort search.SortDirective
		want string
	}{
		{search.SortDirective{Field: "price", Order: domain.SortAsc}, "ORDER BY p.price ASC, p.created_at ASC, p.id ASC"},
		{search.SortDirective{Field: "views", Order: domain.SortDesc}, "ORDER BY p.views DESC, p.created_at ASC, p.id ASC"},
		{search.SortDirective{Field: "id; DROP TABLE properties", Order: "sideways"}, "ORDER BY p.created_at DESC, p.created_at ASC, p.id ASC"},
	}
	for _, c := range cases {
		if got := orderClause(c.sort); got != c.want {
			t.Fatalf("orderClause(%+v) = %q, want %q", c.sort, got, c.want)
		}
	}
}
