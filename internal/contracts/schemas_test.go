package contracts

import (
	"testing"

	"search-service/internal/core/domain"
)

func TestKeyFromPath(t *testing.T) {
	cases := map[string]string{
		"search-request/v1.json":        SearchRequestV1,
		"property-viewed-event/v1.json": PropertyViewedEventV1,
		"property-listed-event/v1.json": PropertyListedEventV1,
		"broken.json":                   "",
	}
	for in, want := range cases {
		if got := keyFromPath(in); got != want {
			t.Fatalf("keyFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAllSchemasCompiled(t *testing.T) {
	for _, key := range []string{SearchRequestV1, PropertyViewedEventV1, PropertyListedEventV1} {
		if _, ok := compiledSchemas[key]; !ok {
			t.Fatalf("schema %s not registered", key)
		}
	}
}

func TestValidateSearchRequest(t *testing.T) {
	valid := []string{
		`{}`,
		`{"query":"sea","propertyType":["apartment","villa"],"minPrice":100,"maxPrice":"5000","bedrooms":[1,2],"hasParking":true,"page":2,"limit":50,"unknown":1}`,
		`{"propertyType":"apartment,villa","limit":"20","hasBalcony":"true"}`,
	}
	for _, body := range valid {
		if err := Validate(SearchRequestV1, []byte(body)); err != nil {
			t.Fatalf("%s: unexpected error %v", body, err)
		}
	}

	invalid := []struct {
		body  string
		field string
	}{
		{`[]`, "body"},
		{`{"limit":500}`, "limit"},
		{`{"page":0}`, "page"},
		{`{"minPrice":-1}`, "minPrice"},
		{`{"propertyType":["castle"]}`, "propertyType"},
		{`{"listingType":"lease"}`, "listingType"},
		{`{"hasElevator":1}`, "hasElevator"},
		{`not json`, "body"},
	}
	for _, c := range invalid {
		err := Validate(SearchRequestV1, []byte(c.body))
		vErr, ok := domain.AsValidationError(err)
		if !ok {
			t.Fatalf("%s: expected ValidationError, got %v", c.body, err)
		}
		if vErr.Field != c.field {
			t.Fatalf("%s: field = %q, want %q", c.body, vErr.Field, c.field)
		}
	}
}

func TestValidatePropertyViewedEvent(t *testing.T) {
	ok := `{"property_id":"8a7f5f7e-3c1b-4a59-9a55-0b1fd1f0a001","views":3,"viewed_at":"2025-03-01T12:00:00Z"}`
	if err := Validate(PropertyViewedEventV1, []byte(ok)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := `{"property_id":"not-a-uuid","views":3,"viewed_at":"2025-03-01T12:00:00Z"}`
	if err := Validate(PropertyViewedEventV1, []byte(bad)); err == nil {
		t.Fatalf("expected format error")
	}
	if err := Validate("Unknown/1.0.0", []byte(`{}`)); err == nil {
		t.Fatalf("expected missing schema error")
	}
}

func TestValidatePropertyListedEvent(t *testing.T) {
	ok := `{"title":"Flat","property_type":"apartment","listing_type":"rent","price":500,"area":40,"city":"Tabriz","latitude":null}`
	if err := Validate(PropertyListedEventV1, []byte(ok)); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	bad := `{"title":"Flat","property_type":"apartment","listing_type":"rent","price":500,"area":0,"city":"Tabriz"}`
	err := Validate(PropertyListedEventV1, []byte(bad))
	vErr, isValidation := domain.AsValidationError(err)
	if !isValidation || vErr.Field != "area" {
		t.Fatalf("expected area validation error, got %v", err)
	}
}
