package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/invoices")
	req := httptest.NewRequest(http.MethodPost, "/invoices", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "glass_http_requests_total{code=\"418\",route=\"/invoices\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, "glass_http_request_duration_seconds_bucket{route=\"/invoices\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestMetricsRecordGenerations(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveGeneration(invoice.VariantFleet, "success", 20*time.Millisecond)
	metrics.ObserveGeneration(invoice.VariantFleet, "success", 30*time.Millisecond)
	metrics.ObserveGeneration("", "invalid", time.Millisecond)
	metrics.LogoFallback()

	body := scrape(t, metrics)
	for _, want := range []string{
		`glass_invoice_generations_total{status="success",variant="fleet"} 2`,
		`glass_invoice_generations_total{status="invalid",variant="unknown"} 1`,
		`glass_invoice_generation_duration_seconds_count{variant="fleet"} 2`,
		`glass_invoice_logo_fallbacks_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics, got: %s", want, body)
		}
	}
}

func TestMetricsShareRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetricsWith(registry)
	metrics.LogoFallback()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "glass_invoice_logo_fallbacks_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected logo fallback counter in shared registry")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveGeneration(invoice.VariantDealer, "success", time.Millisecond)
	metrics.LogoFallback()

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
