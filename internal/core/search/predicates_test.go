package search

import (
	"testing"

	"search-service/internal/core/domain"
)

func TestPredicates(t *testing.T) {
	prop := domain.Property{
		Title:         "Светлая квартира",
		Description:   "Near the PARK",
		Address:       "ул. Немига, 5",
		PropertyType:  domain.PropertyTypeApartment,
		ListingType:   domain.ListingTypeSale,
		Price:         150,
		Area:          60,
		Bedrooms:      2,
		Bathrooms:     1,
		ParkingSpaces: 0,
		HasElevator:   true,
		City:          "Tehran",
		District:      "Vanak",
		Amenities:     []string{"pool", "gym"},
	}

	cases := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"text in title any case", NewTextPredicate("СВЕТЛАЯ"), true},
		{"text in description", NewTextPredicate("park"), true},
		{"text in address", NewTextPredicate("немига"), true},
		{"text missing", NewTextPredicate("villa"), false},
		{"type member", PropertyTypePredicate{Types: []domain.PropertyType{domain.PropertyTypeVilla, domain.PropertyTypeApartment}}, true},
		{"type not member", PropertyTypePredicate{Types: []domain.PropertyType{domain.PropertyTypeVilla}}, false},
		{"listing equal", ListingTypePredicate{Type: domain.ListingTypeSale}, true},
		{"listing differs", ListingTypePredicate{Type: domain.ListingTypeRent}, false},
		{"price inclusive min", RangePredicate{Name: FieldPrice, Min: ptr(150)}, true},
		{"price inclusive max", RangePredicate{Name: FieldPrice, Max: ptr(150)}, true},
		{"price below min", RangePredicate{Name: FieldPrice, Min: ptr(151)}, false},
		{"inverted range", RangePredicate{Name: FieldPrice, Min: ptr(200), Max: ptr(100)}, false},
		{"area within", RangePredicate{Name: FieldArea, Min: ptr(50), Max: ptr(70)}, true},
		{"area above max", RangePredicate{Name: FieldArea, Max: ptr(59)}, false},
		{"bedrooms in set", IntSetPredicate{Name: FieldBedrooms, Values: []int{1, 2}}, true},
		{"bathrooms not in set", IntSetPredicate{Name: FieldBathrooms, Values: []int{2, 3}}, false},
		{"city substring", NewContainsPredicate(FieldCity, "hRa"), true},
		{"district mismatch", NewContainsPredicate(FieldDistrict, "Karaj"), false},
		{"amenities any", AmenitiesPredicate{Amenities: []string{"sauna", "gym"}}, true},
		{"amenities none", AmenitiesPredicate{Amenities: []string{"sauna"}}, false},
		{"elevator required", FlagPredicate{Name: FieldHasElevator}, true},
		{"parking required", FlagPredicate{Name: FieldHasParking}, false},
		{"balcony required", FlagPredicate{Name: FieldHasBalcony}, false},
		{"zero value text predicate", TextPredicate{Query: "park"}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.pred.Match(prop); got != c.want {
				t.Fatalf("Match = %v, want %v", got, c.want)
			}
		})
	}
}
