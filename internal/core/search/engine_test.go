package search

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"search-service/internal/core/domain"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newProperty(title string, price int64, area int, pt domain.PropertyType, city string, ageHours int) domain.Property {
	return domain.Property{
		ID:           uuid.New(),
		Title:        title,
		PropertyType: pt,
		ListingType:  domain.ListingTypeSale,
		Status:       domain.StatusActive,
		Price:        price,
		Area:         area,
		City:         city,
		CreatedAt:    baseTime.Add(time.Duration(ageHours) * time.Hour),
	}
}

// P1, P2, P3 создаются по порядку, P3 самый новый.
func scenarioCollection() []domain.Property {
	return []domain.Property{
		newProperty("P1", 100, 50, domain.PropertyTypeApartment, "Tehran", 0),
		newProperty("P2", 200, 80, domain.PropertyTypeVilla, "Tehran", 1),
		newProperty("P3", 150, 60, domain.PropertyTypeApartment, "Karaj", 2),
	}
}

func titles(props []domain.Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.Title)
	}
	return out
}

func TestEngineScenario(t *testing.T) {
	engine := NewEngine(scenarioCollection())

	cases := []struct {
		name       string
		raw        RawFilters
		want       []string
		total      int
		totalPages int
	}{
		{
			name:       "type and city",
			raw:        RawFilters{"propertyType": []any{"apartment"}, "city": "Tehran", "page": 1.0, "limit": 10.0},
			want:       []string{"P1"},
			total:      1,
			totalPages: 1,
		},
		{
			name:       "price range",
			raw:        RawFilters{"minPrice": 120.0, "maxPrice": 180.0},
			want:       []string{"P3"},
			total:      1,
			totalPages: 1,
		},
		{
			name:       "second page of everything",
			raw:        RawFilters{"limit": 2.0, "page": 2.0},
			want:       []string{"P1"},
			total:      3,
			totalPages: 2,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := engine.Search(c.raw)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if got := titles(res.Data); !reflect.DeepEqual(got, c.want) {
				t.Fatalf("data = %v, want %v", got, c.want)
			}
			if res.Total != c.total || res.TotalPages != c.totalPages {
				t.Fatalf("total=%d totalPages=%d, want %d/%d", res.Total, res.TotalPages, c.total, c.totalPages)
			}
		})
	}
}

func TestEngineIdempotent(t *testing.T) {
	engine := NewEngine(scenarioCollection())
	raw := RawFilters{"sortBy": "price", "sortOrder": "ASC", "limit": "2"}

	first, err := engine.Search(raw)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	second, err := engine.Search(raw)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestEnginePaginationCoverage(t *testing.T) {
	var collection []domain.Property
	for i := 0; i < 23; i++ {
		// одинаковые цены проверяют устойчивость сортировки
		p := newProperty(string(rune('a'+i)), int64(100*(i%4)), 40+i, domain.PropertyTypeApartment, "Minsk", i)
		collection = append(collection, p)
	}
	engine := NewEngine(collection)

	full, err := engine.Search(RawFilters{"sortBy": "price", "limit": 100.0})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	var concatenated []string
	seen := make(map[uuid.UUID]bool)
	res, _ := engine.Search(RawFilters{"sortBy": "price", "limit": 5.0})
	for page := 1; page <= res.TotalPages; page++ {
		pageRes, err := engine.Search(RawFilters{"sortBy": "price", "limit": 5.0, "page": float64(page)})
		if err != nil {
			t.Fatalf("page %d failed: %v", page, err)
		}
		for _, p := range pageRes.Data {
			if seen[p.ID] {
				t.Fatalf("duplicate %s on page %d", p.Title, page)
			}
			seen[p.ID] = true
		}
		concatenated = append(concatenated, titles(pageRes.Data)...)
	}

	if res.TotalPages != 5 {
		t.Fatalf("totalPages = %d, want 5", res.TotalPages)
	}
	if !reflect.DeepEqual(concatenated, titles(full.Data)) {
		t.Fatalf("pages %v do not reproduce %v", concatenated, titles(full.Data))
	}
}

func TestEngineMonotonicNarrowing(t *testing.T) {
	collection := scenarioCollection()
	collection[0].HasBalcony = true
	collection[1].Amenities = []string{"pool"}
	collection[2].ParkingSpaces = 1
	engine := NewEngine(collection)

	base := RawFilters{"maxPrice": 180.0}
	baseRes, err := engine.Search(base)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	extras := []RawFilters{
		{"hasBalcony": true},
		{"hasParking": "true"},
		{"amenities": []any{"pool"}},
		{"city": "teh"},
		{"query": "P3"},
		{"bedrooms": []any{0.0}},
		{"listingType": "rent"},
	}
	for _, extra := range extras {
		raw := RawFilters{}
		for k, v := range base {
			raw[k] = v
		}
		for k, v := range extra {
			raw[k] = v
		}
		res, err := engine.Search(raw)
		if err != nil {
			t.Fatalf("search with %v failed: %v", extra, err)
		}
		if res.Total > baseRes.Total {
			t.Fatalf("adding %v increased total from %d to %d", extra, baseRes.Total, res.Total)
		}
	}
}

func TestEngineFlagAsymmetry(t *testing.T) {
	collection := scenarioCollection()
	collection[1].HasBalcony = true
	engine := NewEngine(collection)

	for _, raw := range []RawFilters{{}, {"hasBalcony": false}, {"hasBalcony": "false"}} {
		res, err := engine.Search(raw)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if res.Total != 3 {
			t.Fatalf("%v: total = %d, want 3", raw, res.Total)
		}
	}

	res, err := engine.Search(RawFilters{"hasBalcony": true})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if got := titles(res.Data); !reflect.DeepEqual(got, []string{"P2"}) {
		t.Fatalf("hasBalcony=true returned %v", got)
	}
}

func TestEngineFeaturedFilter(t *testing.T) {
	collection := scenarioCollection()
	collection[0].IsFeatured = true
	collection[2].IsFeatured = true
	engine := NewEngine(collection)

	res, err := engine.Search(RawFilters{"isFeatured": "true"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if got := titles(res.Data); !reflect.DeepEqual(got, []string{"P3", "P1"}) {
		t.Fatalf("isFeatured=true returned %v", got)
	}

	res, err = engine.Search(RawFilters{"isFeatured": false})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Total != 3 {
		t.Fatalf("isFeatured=false total = %d, want 3", res.Total)
	}
}

func TestEngineUnknownSortByFallsBack(t *testing.T) {
	engine := NewEngine(scenarioCollection())

	res, err := engine.Search(RawFilters{"sortBy": "password"})
	if err != nil {
		t.Fatalf("unknown sortBy must not fail: %v", err)
	}
	if got := titles(res.Data); !reflect.DeepEqual(got, []string{"P3", "P2", "P1"}) {
		t.Fatalf("expected createdAt DESC order, got %v", got)
	}
}

func TestEnginePageBeyondLast(t *testing.T) {
	engine := NewEngine(scenarioCollection())

	res, err := engine.Search(RawFilters{"page": 7.0, "limit": 2.0})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Data == nil || len(res.Data) != 0 {
		t.Fatalf("expected empty non-nil data, got %v", res.Data)
	}
	if res.Total != 3 || res.TotalPages != 2 || res.Page != 7 {
		t.Fatalf("unexpected envelope %+v", res)
	}
}

func TestEngineEmptyResult(t *testing.T) {
	engine := NewEngine(scenarioCollection())

	res, err := engine.Search(RawFilters{"city": "Shiraz"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(res.Data) != 0 || res.Total != 0 || res.TotalPages != 0 {
		t.Fatalf("unexpected envelope %+v", res)
	}
}

func TestEngineExcludesInactive(t *testing.T) {
	collection := scenarioCollection()
	collection[0].Status = domain.StatusSold
	collection[1].Status = domain.StatusPending
	engine := NewEngine(collection)

	res, err := engine.Search(RawFilters{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if got := titles(res.Data); !reflect.DeepEqual(got, []string{"P3"}) {
		t.Fatalf("expected only active listings, got %v", got)
	}
}

func TestEngineValidationError(t *testing.T) {
	engine := NewEngine(scenarioCollection())

	_, err := engine.Search(RawFilters{"limit": 500.0})
	vErr, ok := domain.AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != FieldLimit {
		t.Fatalf("field = %q, want %q", vErr.Field, FieldLimit)
	}
}
