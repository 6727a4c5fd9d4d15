package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once
	registerErr  error

	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	tokenRefreshTotal  prometheus.Counter
)

// Register creates the collectors and registers them with reg (the default
// registerer when nil). Record* helpers are no-ops until Register is called.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	registerOnce.Do(func() {
		requests := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_api_requests_total",
			Help: "Directory API calls by operation and outcome",
		}, []string{"operation", "outcome"})

		duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "directory_api_request_duration_seconds",
			Help:    "Directory API call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"})

		refresh := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "directory_token_refresh_total",
			Help: "Bearer tokens discarded after a 401",
		})

		for _, c := range []prometheus.Collector{requests, duration, refresh} {
			if err := registerCollector(reg, c); err != nil {
				registerErr = err
				return
			}
		}

		apiRequestsTotal = requests
		apiRequestDuration = duration
		tokenRefreshTotal = refresh
	})
	return registerErr
}

// Handler serves g, or the default gatherer when g is nil.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func RecordAPICall(operation, outcome string, d time.Duration) {
	if apiRequestsTotal != nil {
		apiRequestsTotal.WithLabelValues(operation, outcome).Inc()
	}
	if apiRequestDuration != nil {
		apiRequestDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func RecordTokenRefresh() {
	if tokenRefreshTotal != nil {
		tokenRefreshTotal.Inc()
	}
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
