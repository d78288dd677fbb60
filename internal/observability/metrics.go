package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "callcenter"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	httpErrors        *prometheus.CounterVec
	callsEnded        *prometheus.CounterVec
	complaintsCreated *prometheus.CounterVec
	complaintsClosed  prometheus.Counter
	surveys           *prometheus.CounterVec
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Failed HTTP requests by route, method and error code.",
		}, []string{"path", "method", "code"}),
		callsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_ended_total",
			Help:      "Calls recorded, split by whether a complaint was opened.",
		}, []string{"complaint"}),
		complaintsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "complaints_created_total",
			Help:      "Complaints created by origin.",
		}, []string{"origin"}),
		complaintsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "complaints_closed_total",
			Help:      "Complaints closed by staff.",
		}),
		surveys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surveys_submitted_total",
			Help:      "Satisfaction surveys by rating.",
		}, []string{"rating"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
		m.callsEnded,
		m.complaintsCreated,
		m.complaintsClosed,
		m.surveys,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

// RecordCallEnded counts a committed call.
func (m *Metrics) RecordCallEnded(complaintCreated bool) {
	if m == nil {
		return
	}
	m.callsEnded.WithLabelValues(strconv.FormatBool(complaintCreated)).Inc()
}

// RecordComplaintCreated counts a new complaint.
func (m *Metrics) RecordComplaintCreated(origin string) {
	if m == nil {
		return
	}
	m.complaintsCreated.WithLabelValues(origin).Inc()
}

// RecordComplaintClosed counts a close.
func (m *Metrics) RecordComplaintClosed() {
	if m == nil {
		return
	}
	m.complaintsClosed.Inc()
}

// RecordSurvey counts a submitted survey.
func (m *Metrics) RecordSurvey(rating int) {
	if m == nil {
		return
	}
	m.surveys.WithLabelValues(strconv.Itoa(rating)).Inc()
}
