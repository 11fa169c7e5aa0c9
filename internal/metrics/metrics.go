// Package metrics holds the Prometheus collectors for the HTTP APIs and the
// coin ledger.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "labproj"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"service", "method", "path"},
	)

	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger mutations by operation and result.",
		},
		[]string{"op", "result"},
	)

	ledgerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger mutations including reconciliation.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"op"},
	)

	coinsTransferred = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "coins_transferred_total",
			Help:      "Coins moved from professors to students.",
		},
	)

	coinsSpent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "coins_spent_total",
			Help:      "Coins spent by students on advantages.",
		},
	)

	allowanceRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "allowance",
			Name:      "runs_total",
			Help:      "Semester allowance job runs.",
		},
		[]string{"success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ledgerOperations,
		ledgerDuration,
		coinsTransferred,
		coinsSpent,
		allowanceRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InflightInc increments the in-flight gauge.
func InflightInc() { httpInFlight.Inc() }

// InflightDec decrements the in-flight gauge.
func InflightDec() { httpInFlight.Dec() }

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(service, method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// RecordLedgerOperation records a client-side mutation outcome.
func RecordLedgerOperation(op, result string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	ledgerOperations.WithLabelValues(op, result).Inc()
	ledgerDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordTransfer counts coins moved by a committed transfer.
func RecordTransfer(amount int64) {
	coinsTransferred.Add(float64(amount))
}

// RecordRedemption counts coins spent by a committed redemption.
func RecordRedemption(cost int64) {
	coinsSpent.Add(float64(cost))
}

// RecordAllowanceRun records one semester allowance run.
func RecordAllowanceRun(success bool) {
	allowanceRuns.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// CanonicalPath collapses identifier segments so label cardinality stays bounded.
func CanonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		if isIdentifier(part) {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func isIdentifier(segment string) bool {
	if _, err := uuid.Parse(segment); err == nil {
		return true
	}
	if _, err := strconv.ParseInt(segment, 10, 64); err == nil {
		return true
	}
	return false
}
