package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected scrape status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestCheckoutCountersExposed(t *testing.T) {
	metrics := NewMetrics()
	metrics.CheckoutFinalized()
	metrics.CheckoutFinalized()
	metrics.PostingSkipped()

	body := scrape(t, metrics)
	if !strings.Contains(body, "atithi_checkouts_finalized_total 2") {
		t.Fatalf("expected two finalized checkouts, got: %s", body)
	}
	if !strings.Contains(body, "atithi_ledger_postings_skipped_total 1") {
		t.Fatalf("expected one skipped posting, got: %s", body)
	}
}

func TestMiddlewareRecordsRouteAndStatus(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/checkout/finalize")

	req := httptest.NewRequest(http.MethodPost, "/checkout/finalize", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `atithi_http_requests_total{code="418",route="/checkout/finalize"} 1`) {
		t.Fatalf("expected request counter, got: %s", body)
	}
	if !strings.Contains(body, `atithi_http_request_duration_seconds_bucket{route="/checkout/finalize"`) {
		t.Fatalf("expected duration histogram, got: %s", body)
	}
}

func TestMiddlewareFallsBackWithoutRouteContext(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/raw", nil))

	body := scrape(t, metrics)
	if !strings.Contains(body, `route="unknown"`) {
		t.Fatalf("expected unknown route label, got: %s", body)
	}
}

func TestNilMetricsAreInert(t *testing.T) {
	var metrics *Metrics
	metrics.CheckoutFinalized()
	metrics.PostingSkipped()

	passthrough := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	passthrough.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("middleware must pass through on nil metrics, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil metrics handler should be unavailable, got %d", rr.Code)
	}
}
