package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the size of an HTTP response
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

// IncHTTPRequestsInFlight increments the in-flight request gauge
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight decrements the in-flight request gauge
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordConnectionOpened records a successful connect
func (r *Registry) RecordConnectionOpened(protocol, region string) {
	r.ConnectionsOpenedTotal.WithLabelValues(protocol, region).Inc()
	r.ConnectionsActive.Inc()
}

// RecordConnectionClosed records an explicit disconnect
func (r *Registry) RecordConnectionClosed() {
	r.ConnectionsActive.Dec()
}

// RecordSync records a successful sync event
func (r *Registry) RecordSync(objects int, bytes uint64) {
	r.SyncsTotal.Inc()
	r.SyncBytesTotal.Add(float64(bytes))
	r.SyncObjects.Observe(float64(objects))
}

// RecordTransform records a successful protocol transform
func (r *Registry) RecordTransform(source, target string, duration time.Duration) {
	r.TransformsTotal.WithLabelValues(source, target).Inc()
	r.TransformDuration.Observe(duration.Seconds())
}

// RecordMeshBuilt records a successful mesh build
func (r *Registry) RecordMeshBuilt(topology string, edges int) {
	r.MeshesBuiltTotal.WithLabelValues(topology).Inc()
	r.MeshEdges.Observe(float64(edges))
}

// SetUptime updates the uptime gauge
func (r *Registry) SetUptime(d time.Duration) {
	r.UptimeSeconds.Set(d.Seconds())
}
