// Package metrics defines the Prometheus collectors shared by the client
// workflows and the development API server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. A zero-value *Metrics is not usable; use New.
type Metrics struct {
	APIRequests    *prometheus.CounterVec
	APIDuration    *prometheus.HistogramVec
	Signups        *prometheus.CounterVec
	StaleDiscards  *prometheus.CounterVec
	ServerRequests *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to keep them isolated.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteer_api_requests_total",
			Help: "Requests issued to the events API, by endpoint and HTTP status.",
		}, []string{"endpoint", "status"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "volunteer_api_request_duration_seconds",
			Help:    "Latency of requests to the events API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteer_signups_total",
			Help: "Volunteer signup attempts by outcome.",
		}, []string{"outcome"}),
		StaleDiscards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteer_store_stale_discards_total",
			Help: "Fetch results dropped because a newer result was already applied.",
		}, []string{"half"}),
		ServerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteer_devapi_requests_total",
			Help: "Requests served by the development API, by route and status.",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.APIRequests, m.APIDuration, m.Signups, m.StaleDiscards, m.ServerRequests)
	return m
}

// Discard returns collectors registered nowhere, for callers that do not export metrics.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}
