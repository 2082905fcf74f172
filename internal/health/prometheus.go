package health

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type collectors struct {
	requestCounter *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

var (
	promOnce sync.Once
	prom     *collectors
)

func promCollectors() *collectors {
	promOnce.Do(func() {
		prom = &collectors{
			requestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "fabsearch_provider_requests_total",
				Help: "Provider calls by outcome",
			}, []string{"provider", "outcome"}),

			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "fabsearch_provider_latency_seconds",
				Help:    "Upstream provider call latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"provider"}),
		}
		prometheus.MustRegister(prom.requestCounter, prom.latency)
	})
	return prom
}

func observeRequest(provider string, d time.Duration, ok bool) {
	c := promCollectors()
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	c.requestCounter.WithLabelValues(provider, outcome).Inc()
	c.latency.WithLabelValues(provider).Observe(d.Seconds())
}
