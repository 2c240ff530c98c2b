package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the gateway
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Gateway Metrics
	ConnectionsOpenedTotal *prometheus.CounterVec
	ConnectionsActive      prometheus.Gauge
	SyncsTotal             prometheus.Counter
	SyncBytesTotal         prometheus.Counter
	SyncObjects            prometheus.Histogram
	TransformsTotal        *prometheus.CounterVec
	TransformDuration      prometheus.Histogram
	MeshesBuiltTotal       *prometheus.CounterVec
	MeshEdges              prometheus.Histogram

	// System Metrics
	UptimeSeconds prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initGatewayMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
