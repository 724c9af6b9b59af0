package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func lookupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/concepts/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "C9999999" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"id":"C0027651"}`))
	})
	r.Get("/strings/{value}/concepts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := lookupRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/concepts/{id}", "200"))

	for _, path := range []string{"/concepts/C0027651", "/concepts/C0006826"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rr.Code)
		}
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/concepts/{id}", "200"))
	if after-before != 2 {
		t.Errorf("expected both concept ids under one route label, got delta %f", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := lookupRouter()

	tests := []struct {
		path    string
		pattern string
		status  string
	}{
		{"/concepts/C9999999", "/concepts/{id}", "404"},
		{"/strings/tumor/concepts", "/strings/{value}/concepts", "200"},
		{"/health", "/health", "503"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.pattern, tc.status))
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))
			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.pattern, tc.status))
			if after-before != 1 {
				t.Errorf("requests_total{path=%q,status=%q} delta = %f, want 1", tc.pattern, tc.status, after-before)
			}
		})
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := lookupRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no/such/route", http.NoBody))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))
	if after-before != 1 {
		t.Errorf("expected unmatched request under the unknown label, got delta %f", after-before)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/concepts/{id}", "/concepts/{id}"},
		{"/health", "/health"},
	}
	for _, tc := range tests {
		if got := normalizePath(tc.input); got != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
