package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "peerlend",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peerlend",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "peerlend",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
		},
		[]string{"method", "route"},
	)

	transactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peerlend",
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Transactions executed, by type.",
		},
		[]string{"type"},
	)

	contractTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peerlend",
			Subsystem: "ledger",
			Name:      "contract_transitions_total",
			Help:      "Smart contract lifecycle transitions, by resulting status.",
		},
		[]string{"status"},
	)

	trustScoreChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peerlend",
			Subsystem: "trust",
			Name:      "score_changes_total",
			Help:      "Trust score history entries appended, by reason.",
		},
		[]string{"reason"},
	)

	storedRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "peerlend",
			Subsystem: "ledger",
			Name:      "records",
			Help:      "Records held in memory, by collection.",
		},
		[]string{"collection"},
	)
)

// Collection labels for SetStoredRecords.
const (
	CollectionContracts    = "contracts"
	CollectionTransactions = "transactions"
	CollectionTrustScores  = "trust_scores"
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		transactions,
		contractTransitions,
		trustScoreChanges,
		storedRecords,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request counts and latency labelled by the chi
// route pattern. Websocket upgrades and the metrics endpoint pass through
// untouched because the recorder cannot be hijacked.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" || strings.HasPrefix(r.URL.Path, "/ws/") {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

func RecordTransaction(txType string) {
	transactions.WithLabelValues(txType).Inc()
}

func RecordContractTransition(status string) {
	contractTransitions.WithLabelValues(status).Inc()
}

func RecordTrustScoreChange(reason string) {
	trustScoreChanges.WithLabelValues(reason).Inc()
}

func SetStoredRecords(collection string, count int) {
	storedRecords.WithLabelValues(collection).Set(float64(count))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func routePattern(r *http.Request) string {
	routeCtx := chi.RouteContext(r.Context())
	if routeCtx == nil {
		return "unmatched"
	}
	pattern := routeCtx.RoutePattern()
	if pattern == "" {
		return "unmatched"
	}
	return pattern
}
