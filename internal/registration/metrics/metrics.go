package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by the registration collectors.
const (
	StatusRegistered   = "registered"
	StatusUnregistered = "unregistered"
	StatusError        = "error"

	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type Metrics struct {
	StatusChecks        *prometheus.CounterVec
	Registrations       *prometheus.CounterVec
	StoreLatency        *prometheus.HistogramVec
	CacheLookups        *prometheus.CounterVec
	CacheCircuitChanges *prometheus.CounterVec
	EventPublishFailed  prometheus.Counter
}

// New registers the registration collectors with reg. A nil reg falls back
// to the default prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		StatusChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nftgate_status_checks_total",
			Help: "Registration status lookups by result",
		}, []string{"result"}),
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nftgate_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nftgate_store_operation_duration_seconds",
			Help:    "Duration of registration store operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nftgate_status_cache_lookups_total",
			Help: "Status cache lookups by result",
		}, []string{"result"}),
		CacheCircuitChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nftgate_status_cache_circuit_changes_total",
			Help: "Status cache circuit breaker transitions",
		}, []string{"state"}),
		EventPublishFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "nftgate_registration_event_publish_failures_total",
			Help: "RegistrationCreated events that could not be published",
		}),
	}
}

func (m *Metrics) IncStatusCheck(result string) {
	if m == nil {
		return
	}
	m.StatusChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) IncRegistration(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveStore(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCacheCircuit(state string) {
	if m == nil {
		return
	}
	m.CacheCircuitChanges.WithLabelValues(state).Inc()
}

func (m *Metrics) IncEventPublishFailed() {
	if m == nil {
		return
	}
	m.EventPublishFailed.Inc()
}
