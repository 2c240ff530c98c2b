package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGatewayMetrics() {
	r.ConnectionsOpenedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_connections_opened_total",
			Help: "Total connections opened, by protocol and region",
		},
		[]string{"protocol", "region"},
	)

	r.ConnectionsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_connections_active",
			Help: "Currently open connections",
		},
	)

	r.SyncsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_syncs_total",
			Help: "Total sync events recorded",
		},
	)

	r.SyncBytesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_sync_bytes_total",
			Help: "Total SDF delta bytes relayed",
		},
	)

	r.SyncObjects = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_sync_objects",
			Help:    "Objects per sync event",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		},
	)

	r.TransformsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_transforms_total",
			Help: "Total protocol transforms, by source and target",
		},
		[]string{"source", "target"},
	)

	r.TransformDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_transform_duration_seconds",
			Help:    "Protocol transform latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 10, 7),
		},
	)

	r.MeshesBuiltTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_meshes_built_total",
			Help: "Total meshes built, by topology",
		},
		[]string{"topology"},
	)

	r.MeshEdges = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_mesh_edges",
			Help:    "Edges per built mesh",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500},
		},
	)
}
