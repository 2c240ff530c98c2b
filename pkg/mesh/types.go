package mesh

import "time"

// Topology selects the edge construction strategy for a mesh.
type Topology string

const (
	TopologyFullMesh Topology = "full-mesh"
	TopologyRing     Topology = "ring"
	TopologyStar     Topology = "star"
	TopologyLine     Topology = "line"
)

// DefaultTopology is used when a mesh request does not name one.
const DefaultTopology = TopologyFullMesh

// Edge is one logical device-to-device link.
type Edge struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	LatencyMs float64 `json:"latency_ms"`
}

// Mesh is a topology graph over a set of device ids. The device list keeps
// the order it was submitted in; edges only connect listed devices.
type Mesh struct {
	ID        string    `json:"mesh_id"`
	Devices   []string  `json:"devices"`
	Topology  Topology  `json:"topology"`
	Edges     []Edge    `json:"connections"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// LatencyModel assigns a deterministic latency to each edge:
//
//	latency_ms = BaseMs + StepMs * edgeIndex
//
// where edgeIndex is the edge's position in construction order. The model is
// linear on purpose so clients and tests can reproduce every value.
type LatencyModel struct {
	BaseMs float64
	StepMs float64
}

// DefaultLatencyModel matches the latencies the gateway has always reported
// for consecutive-device links: 15.0, 20.0, 25.0, ...
func DefaultLatencyModel() LatencyModel {
	return LatencyModel{BaseMs: 15.0, StepMs: 5.0}
}

// Latency returns the modelled latency for the edge at the given index.
func (m LatencyModel) Latency(index int) float64 {
	return m.BaseMs + m.StepMs*float64(index)
}
