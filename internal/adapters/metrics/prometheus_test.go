package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestObserveSearch(t *testing.T) {
	m := New("test")
	m.ObserveSearch("query", 0, 0)
	m.ObserveSearch("query", 12, 10)
	m.ObserveSearch("body", 3, 3)

	out := scrape(t, m.Handler())
	for _, line := range []string{
		`test_searches_total{source="query"} 2`,
		`test_searches_total{source="body"} 1`,
		`test_searches_empty_total{source="query"} 1`,
		`test_search_matched_properties_count 3`,
	} {
		if !strings.Contains(out, line) {
			t.Fatalf("metrics output missing %q:\n%s", line, out)
		}
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New("test")
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/properties/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties/"+id, nil))
	}

	out := scrape(t, m.Handler())
	want := `test_http_requests_total{method="GET",route="/properties/{id}",status="404"} 2`
	if !strings.Contains(out, want) {
		t.Fatalf("metrics output missing %q:\n%s", want, out)
	}
}
