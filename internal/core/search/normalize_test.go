package search

import (
	"encoding/json"
	"reflect"
	"testing"

	"search-service/internal/core/domain"
)

func TestToRawFiltersSurvivesJSON(t *testing.T) {
	spec, err := Validate(RawFilters{
		"query":        "loft",
		"propertyType": "office,land",
		"minPrice":     "10",
		"bedrooms":     "2,3",
		"amenities":    "gym",
		"hasStorage":   "true",
		"isFeatured":   "1",
		"page":         "2",
		"sortBy":       "views",
		"sortOrder":    "ASC",
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	raw := ToRawFilters(spec)
	if _, ok := raw[FieldLimit]; ok {
		t.Fatalf("default limit must be omitted: %v", raw)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded RawFilters
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	again, err := Validate(decoded)
	if err != nil {
		t.Fatalf("revalidate failed: %v", err)
	}
	if !reflect.DeepEqual(spec, again) {
		t.Fatalf("spec changed:\n%+v\n%+v", spec, again)
	}
}

func TestToRawFiltersDefaultsAreEmpty(t *testing.T) {
	if raw := ToRawFilters(domain.DefaultFilterSpec()); len(raw) != 0 {
		t.Fatalf("expected empty raw filters, got %v", raw)
	}
}
