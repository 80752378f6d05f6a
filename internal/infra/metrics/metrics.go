package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	httpLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_ms",
			Help:    "HTTP request latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
		},
		[]string{"method", "route"},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by entity and outcome (hit/miss).",
		},
		[]string{"entity", "outcome"},
	)

	requestsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activation_requests_created_total",
			Help: "Activation requests accepted from the intake form.",
		},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_status_changes_total",
			Help: "Status updates applied, labelled by resulting status.",
		},
		[]string{"status"},
	)

	mailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_mails_total",
			Help: "Outbound activation mails by outcome (sent/failed/skipped).",
		},
		[]string{"outcome"},
	)

	ticketsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_tickets_total",
			Help: "Ticket-system calls by outcome (created/failed/skipped).",
		},
		[]string{"outcome"},
	)

	plansImported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plans_imported_total",
			Help: "Plan rows upserted via spreadsheet upload.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpLatencyMs,
			cacheRequests,
			requestsCreated, statusChanges,
			mailsSent, ticketsCreated,
			plansImported,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func ObserveHTTP(method, route string, status int, latencyMs float64) {
	httpRequests.WithLabelValues(method, route, httpStatusLabel(status)).Inc()
	httpLatencyMs.WithLabelValues(method, route).Observe(latencyMs)
}

func httpStatusLabel(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func IncCacheRequest(entity, outcome string) {
	cacheRequests.WithLabelValues(norm(entity), norm(outcome)).Inc()
}

func IncRequestCreated() { requestsCreated.Inc() }

func IncStatusChange(status string) { statusChanges.WithLabelValues(norm(status)).Inc() }

func IncMail(outcome string)   { mailsSent.WithLabelValues(norm(outcome)).Inc() }
func IncTicket(outcome string) { ticketsCreated.WithLabelValues(norm(outcome)).Inc() }

func AddPlansImported(n int) { plansImported.Add(float64(n)) }
