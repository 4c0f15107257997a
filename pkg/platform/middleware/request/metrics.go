package request

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request durations for this API sit well under a second; the tail buckets
// catch store or cache stalls up to the request timeout.
var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Metrics instruments the HTTP surface by chi route pattern.
type Metrics struct {
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nftgate_http_request_duration_seconds",
			Help:    "Time to serve an HTTP request, by route, method and status class.",
			Buckets: durationBuckets,
		}, []string{"route", "method", "status"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nftgate_http_requests_in_flight",
			Help: "Requests currently being served.",
		}),
	}
}

func (m *Metrics) observe(route, method string, status int, seconds float64) {
	m.duration.WithLabelValues(route, method, statusClass(status)).Observe(seconds)
}

// statusClass folds a status code to "2xx", "4xx" and so on.
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
