package usecase

import (
	"context"
	"errors"
	"testing"

	"search-service/internal/core/domain"
	"search-service/internal/core/search"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
)

func TestSearchPropertiesUseCase(t *testing.T) {
	storage := &stubStorage{props: []domain.Property{
		activeProperty("cheap", 100, "Minsk"),
		activeProperty("pricey", 900, "Minsk"),
	}}
	metrics := &stubMetrics{}
	uc := NewSearchPropertiesUseCase(storage, metrics, "query")

	res, err := uc.Execute(context.Background(), search.RawFilters{"maxPrice": "500"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Total != 1 || res.Data[0].Title != "cheap" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(storage.lastPlan.Predicates) != 1 {
		t.Fatalf("storage got %d predicates", len(storage.lastPlan.Predicates))
	}
	if metrics.calls != 1 || metrics.total != 1 {
		t.Fatalf("metrics not observed: %+v", metrics)
	}
}

func TestSearchPropertiesUseCaseErrors(t *testing.T) {
	storage := &stubStorage{}
	uc := NewSearchPropertiesUseCase(storage, &stubMetrics{}, "query")

	if _, err := uc.Execute(context.Background(), search.RawFilters{"page": "-1"}); err == nil {
		t.Fatalf("expected validation error")
	} else if _, ok := domain.AsValidationError(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	storage.err = errStorageDown
	_, err := uc.Execute(context.Background(), search.RawFilters{})
	if !errors.Is(err, errStorageDown) {
		t.Fatalf("storage error must propagate, got %v", err)
	}
}

func TestGetPropertyDetailsCountsViews(t *testing.T) {
	p := activeProperty("flat", 100, "Minsk")
	storage := &stubStorage{props: []domain.Property{p}}
	publisher := &stubPublisher{}
	uc := NewGetPropertyDetailsUseCase(storage, publisher)

	userID := uuid.New()
	got, err := uc.Execute(context.Background(), p.ID, domain.Viewer{UserID: &userID, IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if got.Views != 1 || len(storage.views) != 1 {
		t.Fatalf("views = %d, records = %d", got.Views, len(storage.views))
	}
	if storage.views[0].IPAddress != "10.0.0.1" || *storage.views[0].UserID != userID {
		t.Fatalf("view record = %+v", storage.views[0])
	}
	if len(publisher.events) != 1 || publisher.events[0].Views != 1 {
		t.Fatalf("events = %+v", publisher.events)
	}

	// ошибки учета просмотров не ломают выдачу карточки
	storage.viewErr = errors.New("views table locked")
	if _, err := uc.Execute(context.Background(), p.ID, domain.Viewer{}); err != nil {
		t.Fatalf("view failure must not fail details: %v", err)
	}
	publisher.err = errors.New("broker down")
	storage.viewErr = nil
	if _, err := uc.Execute(context.Background(), p.ID, domain.Viewer{}); err != nil {
		t.Fatalf("publish failure must not fail details: %v", err)
	}
}

func TestGetPropertyDetailsNotFound(t *testing.T) {
	uc := NewGetPropertyDetailsUseCase(&stubStorage{}, &stubPublisher{})
	_, err := uc.Execute(context.Background(), uuid.New(), domain.Viewer{})
	if !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestCreateProperty(t *testing.T) {
	storage := &stubStorage{}
	uc := NewCreatePropertyUseCase(storage)
	lat, lng := 53.9, 27.56

	p, err := uc.Execute(context.Background(), domain.NewPropertyInput{
		Title:        " Loft ",
		PropertyType: "apartment",
		ListingType:  "rent",
		Price:        500,
		Area:         40,
		City:         "Minsk",
		Latitude:     &lat,
		Longitude:    &lng,
		Amenities:    []string{"gym", " gym", "", "pool"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Status != domain.StatusActive || p.Title != "Loft" || p.ID == uuid.Nil {
		t.Fatalf("unexpected property %+v", p)
	}
	if p.Geohash != geohash.Encode(lat, lng) {
		t.Fatalf("geohash = %q", p.Geohash)
	}
	if len(p.Amenities) != 2 {
		t.Fatalf("amenities = %v", p.Amenities)
	}
	if len(storage.props) != 1 {
		t.Fatalf("property not stored")
	}
}

func TestCreatePropertyValidation(t *testing.T) {
	lat := 10.0
	valid := domain.NewPropertyInput{Title: "x", PropertyType: "villa", ListingType: "sale", Price: 1, Area: 1, City: "Minsk"}

	cases := []struct {
		name   string
		mutate func(in *domain.NewPropertyInput)
		field  string
	}{
		{"empty title", func(in *domain.NewPropertyInput) { in.Title = " " }, "title"},
		{"bad type", func(in *domain.NewPropertyInput) { in.PropertyType = "castle" }, "propertyType"},
		{"bad listing", func(in *domain.NewPropertyInput) { in.ListingType = "swap" }, "listingType"},
		{"negative price", func(in *domain.NewPropertyInput) { in.Price = -1 }, "price"},
		{"zero area", func(in *domain.NewPropertyInput) { in.Area = 0 }, "area"},
		{"negative bedrooms", func(in *domain.NewPropertyInput) { in.Bedrooms = -1 }, "bedrooms"},
		{"no city", func(in *domain.NewPropertyInput) { in.City = "" }, "city"},
		{"half coordinates", func(in *domain.NewPropertyInput) { in.Latitude = &lat }, "latitude"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := valid
			c.mutate(&in)
			_, err := NewCreatePropertyUseCase(&stubStorage{}).Execute(context.Background(), in)
			vErr, ok := domain.AsValidationError(err)
			if !ok || vErr.Field != c.field {
				t.Fatalf("expected ValidationError on %q, got %v", c.field, err)
			}
		})
	}
}

func TestUpdatePropertyStatus(t *testing.T) {
	p := activeProperty("flat", 100, "Minsk")
	storage := &stubStorage{props: []domain.Property{p}}
	uc := NewUpdatePropertyStatusUseCase(storage)
	ctx := context.Background()

	if _, err := uc.Execute(ctx, p.ID, "pending"); err != nil {
		t.Fatalf("active -> pending failed: %v", err)
	}
	if _, err := uc.Execute(ctx, p.ID, "sold"); err != nil {
		t.Fatalf("pending -> sold failed: %v", err)
	}
	if _, err := uc.Execute(ctx, p.ID, "active"); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("sold -> active must be rejected, got %v", err)
	}
	if _, err := uc.Execute(ctx, p.ID, "sold"); err != nil {
		t.Fatalf("sold -> sold must be a no-op, got %v", err)
	}
	if _, err := uc.Execute(ctx, p.ID, "archived"); err == nil {
		t.Fatalf("unknown status must be rejected")
	}
	if _, err := uc.Execute(ctx, uuid.New(), "pending"); !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
	if storage.props[0].Status != domain.StatusSold {
		t.Fatalf("status = %q", storage.props[0].Status)
	}
}

// staleStorage отдает устаревший снимок: другой писатель уже перевел объект в sold.
type staleStorage struct {
	*stubStorage
	snapshot domain.Property
}

func (s *staleStorage) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	p := s.snapshot
	return &p, nil
}

func TestUpdatePropertyStatusConcurrentClose(t *testing.T) {
	p := activeProperty("flat", 100, "Minsk")
	stale := p
	stale.Status = domain.StatusPending
	p.Status = domain.StatusSold

	storage := &staleStorage{stubStorage: &stubStorage{props: []domain.Property{p}}, snapshot: stale}
	uc := NewUpdatePropertyStatusUseCase(storage)

	if _, err := uc.Execute(context.Background(), p.ID, "active"); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
	if storage.props[0].Status != domain.StatusSold {
		t.Fatalf("sold listing reverted to %q", storage.props[0].Status)
	}
}

func TestGetSuggestionsShortQuery(t *testing.T) {
	storage := &stubStorage{props: []domain.Property{activeProperty("a", 1, "Minsk")}}
	uc := NewGetSuggestionsUseCase(storage)

	got, err := uc.Execute(context.Background(), "M", 0)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("short query: %v %v", got, err)
	}
	got, err = uc.Execute(context.Background(), "mi", 0)
	if err != nil || len(got) != 1 || got[0] != "Minsk" {
		t.Fatalf("suggestions: %v %v", got, err)
	}
}

func TestFindSimilar(t *testing.T) {
	base := activeProperty("base", 1000, "Minsk")
	near := activeProperty("near", 1250, "Minsk")
	far := activeProperty("far", 1400, "Minsk")
	other := activeProperty("other city", 1000, "Brest")
	storage := &stubStorage{props: []domain.Property{base, near, far, other}}

	got, err := NewFindSimilarUseCase(storage).Execute(context.Background(), base.ID, 0)
	if err != nil {
		t.Fatalf("similar failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != near.ID {
		t.Fatalf("similar = %v", got)
	}
	c := storage.similar
	if c.PriceMin != 700 || c.PriceMax != 1300 || c.Limit != defaultSimilarLimit || c.ExcludeID != base.ID {
		t.Fatalf("criteria = %+v", c)
	}
}

func withCoords(p domain.Property, lat, lng float64) domain.Property {
	p.Latitude = &lat
	p.Longitude = &lng
	p.Geohash = geohash.Encode(lat, lng)
	return p
}

func TestFindNearby(t *testing.T) {
	center := withCoords(activeProperty("center", 1, "Minsk"), 53.9000, 27.5600)
	closeBy := withCoords(activeProperty("close", 1, "Minsk"), 53.9100, 27.5600)
	edge := withCoords(activeProperty("edge", 1, "Minsk"), 53.9300, 27.5600)
	far := withCoords(activeProperty("far", 1, "Brest"), 52.0900, 23.7000)
	sold := withCoords(activeProperty("sold", 1, "Minsk"), 53.9001, 27.5601)
	sold.Status = domain.StatusSold
	storage := &stubStorage{props: []domain.Property{far, edge, closeBy, center, sold}}
	uc := NewFindNearbyUseCase(storage)

	got, err := uc.Execute(context.Background(), domain.NearbyQuery{Latitude: 53.9, Longitude: 27.56})
	if err != nil {
		t.Fatalf("nearby failed: %v", err)
	}
	var names []string
	for _, p := range got {
		names = append(names, p.Title)
	}
	if len(names) != 3 || names[0] != "center" || names[1] != "close" || names[2] != "edge" {
		t.Fatalf("nearby = %v", names)
	}
	if len(storage.lastCells) != 9 {
		t.Fatalf("expected 9 covering cells, got %v", storage.lastCells)
	}

	got, err = uc.Execute(context.Background(), domain.NearbyQuery{Latitude: 53.9, Longitude: 27.56, RadiusKm: 1.5})
	if err != nil || len(got) != 2 {
		t.Fatalf("radius 1.5km: %d results, err %v", len(got), err)
	}

	if _, err := uc.Execute(context.Background(), domain.NearbyQuery{Latitude: 91}); err == nil {
		t.Fatalf("latitude 91 must be rejected")
	}
}

func TestHaversine(t *testing.T) {
	// Минск - Брест около 326 км
	d := haversineKm(53.9, 27.5667, 52.0976, 23.7341)
	if d < 320 || d > 335 {
		t.Fatalf("distance = %v", d)
	}
	if haversineKm(1, 1, 1, 1) != 0 {
		t.Fatalf("distance to self must be 0")
	}
}
