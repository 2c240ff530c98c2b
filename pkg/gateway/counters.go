package gateway

import "sync/atomic"

// counters are the process-wide operation totals. Per-field atomics keep the
// hot request path free of a shared lock; a snapshot reads each field once.
// Totals are monotonically non-decreasing and reset only on restart.
type counters struct {
	connections  atomic.Uint64
	syncs        atomic.Uint64
	transforms   atomic.Uint64
	bytesRelayed atomic.Uint64
}

// Stats is a point-in-time rollup of the gateway's counters plus the live
// sizes of the connection table and mesh registry.
type Stats struct {
	TotalConnections  uint64 `json:"total_connections"`
	TotalSyncs        uint64 `json:"total_syncs"`
	TotalTransforms   uint64 `json:"total_transforms"`
	BytesRelayed      uint64 `json:"bytes_relayed"`
	ActiveConnections int    `json:"active_connections"`
	ActiveMeshes      int    `json:"active_meshes"`
}

func (c *counters) snapshot() Stats {
	return Stats{
		TotalConnections: c.connections.Load(),
		TotalSyncs:       c.syncs.Load(),
		TotalTransforms:  c.transforms.Load(),
		BytesRelayed:     c.bytesRelayed.Load(),
	}
}
