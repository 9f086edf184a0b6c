package usecase

import (
	"context"
	"errors"
	"testing"

	"search-service/internal/core/domain"
	"search-service/internal/core/search"
)

func TestSavedFiltersLifecycle(t *testing.T) {
	kv := newStubKV()
	uc := NewSavedFiltersUseCase(kv)
	ctx := context.Background()

	got, err := uc.Load(ctx, "u1")
	if err != nil || len(got) != 0 {
		t.Fatalf("empty load: %v %v", got, err)
	}

	saved, err := uc.Save(ctx, "u1", search.RawFilters{"city": "Minsk", "hasBalcony": "true", "junk": 1})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, ok := saved["junk"]; ok {
		t.Fatalf("unknown keys must not be stored: %v", saved)
	}
	if _, ok := kv.data["real-estate-search-filters:u1"]; !ok {
		t.Fatalf("unexpected keys %v", kv.data)
	}

	got, err = uc.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got["city"] != "Minsk" || got["hasBalcony"] != true {
		t.Fatalf("loaded = %v", got)
	}

	if err := uc.Reset(ctx, "u1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if got, _ := uc.Load(ctx, "u1"); len(got) != 0 {
		t.Fatalf("filters survived reset: %v", got)
	}
}

func TestSavedFiltersRejectsInvalid(t *testing.T) {
	kv := newStubKV()
	_, err := NewSavedFiltersUseCase(kv).Save(context.Background(), "u1", search.RawFilters{"limit": 1000})
	if _, ok := domain.AsValidationError(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(kv.data) != 0 {
		t.Fatalf("invalid filters were stored")
	}
}

func TestSavedFiltersCorruptedDataIsEmpty(t *testing.T) {
	kv := newStubKV()
	kv.data["real-estate-search-filters:u1"] = []byte("{not json")
	kv.data["real-estate-search-filters:u2"] = []byte(`{"limit": 5000}`)
	uc := NewSavedFiltersUseCase(kv)

	for _, owner := range []string{"u1", "u2"} {
		got, err := uc.Load(context.Background(), owner)
		if err != nil || len(got) != 0 {
			t.Fatalf("%s: got %v, err %v", owner, got, err)
		}
	}
}

func TestSavedFiltersStoreError(t *testing.T) {
	kv := newStubKV()
	kv.err = errors.New("redis down")
	if _, err := NewSavedFiltersUseCase(kv).Load(context.Background(), "u1"); err == nil {
		t.Fatalf("store errors must propagate")
	}
}
