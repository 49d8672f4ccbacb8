// Package metrics holds the Prometheus collectors of the service
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector. Create one per registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	Uploads          *prometheus.CounterVec
	Forecasts        *prometheus.CounterVec
	ModelFitDuration *prometheus.HistogramVec
	DatasetCache     *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_http_requests_total",
			Help: "Total number of HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "freight_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "route"}),
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_uploads_total",
			Help: "Total number of uploads by category and outcome.",
		}, []string{"category", "outcome"}),
		Forecasts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_forecasts_total",
			Help: "Total number of lane forecasts by outcome.",
		}, []string{"outcome"}),
		ModelFitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "freight_model_fit_duration_seconds",
			Help:    "Duration of a single model fit and forecast.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"model"}),
		DatasetCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_dataset_cache_lookups_total",
			Help: "Dataset cache lookups by result.",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
