package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	logoFallbacks      prometheus.Counter
}

// NewMetrics menginisialisasi registry, metrik HTTP dan metrik pembuatan invoice.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry())
}

// NewMetricsWith mendaftarkan metrik pada registry yang sudah ada, misalnya
// registry worker yang juga memuat metrik job.
func NewMetricsWith(registry *prometheus.Registry) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glass_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "glass_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glass_invoice_generations_total",
		Help: "Invoice generations by document variant and outcome.",
	}, []string{"variant", "status"})
	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "glass_invoice_generation_duration_seconds",
		Help:    "Time spent laying out and rendering one invoice.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"variant"})
	logoFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "glass_invoice_logo_fallbacks_total",
		Help: "Invoices rendered with the text header because the logo could not be loaded.",
	})
	registry.MustRegister(requests, duration, generations, generationDuration, logoFallbacks)
	return &Metrics{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:      requests,
		requestDuration:    duration,
		generationsTotal:   generations,
		generationDuration: generationDuration,
		logoFallbacks:      logoFallbacks,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveGeneration mencatat satu pembuatan invoice.
func (m *Metrics) ObserveGeneration(variant invoice.Variant, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := string(variant)
	if label == "" {
		label = "unknown"
	}
	m.generationsTotal.WithLabelValues(label, status).Inc()
	m.generationDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// LogoFallback mencatat header yang jatuh kembali ke teks.
func (m *Metrics) LogoFallback() {
	if m == nil {
		return
	}
	m.logoFallbacks.Inc()
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
