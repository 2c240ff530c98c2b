package api

import (
	"github.com/alice-platform/gateway-engine/pkg/health"
	"github.com/alice-platform/gateway-engine/pkg/mesh"
	"github.com/alice-platform/gateway-engine/pkg/protocol"
	"github.com/alice-platform/gateway-engine/pkg/session"
)

// Error kinds carried in the error envelope. Each maps to a fixed HTTP
// status at the boundary.
const (
	KindInvalidInput        = "invalid_input"
	KindUnknownConnection   = "unknown_connection"
	KindUnsupportedProtocol = "unsupported_protocol"
	KindNotFound            = "not_found"
	KindInternal            = "internal"
)

// ErrorResponse is the envelope every error response uses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	UptimeSecs int64                   `json:"uptime_secs"`
	TotalOps   uint64                  `json:"total_ops"`
	Checks     map[string]health.Check `json:"checks,omitempty"`
}

// SyncResponse is the body of POST /api/v1/gateway/sync.
type SyncResponse struct {
	SyncID              string  `json:"sync_id"`
	Status              string  `json:"status"`
	ObjectsSynced       int     `json:"objects_synced"`
	SDFBytesTransferred uint64  `json:"sdf_bytes_transferred"`
	LatencyMs           float64 `json:"latency_ms"`
}

// MeshResponse is the body of POST /api/v1/gateway/mesh and the per-mesh
// shape of the mesh listing endpoints. Devices is a count; the device list
// itself is available over GraphQL.
type MeshResponse struct {
	MeshID      string      `json:"mesh_id"`
	Devices     int         `json:"devices"`
	Topology    string      `json:"topology"`
	Connections []mesh.Edge `json:"connections"`
	Status      string      `json:"status"`
}

// ConnectionsResponse is the body of GET /api/v1/gateway/connections.
type ConnectionsResponse struct {
	Connections []*session.Connection `json:"connections"`
	Count       int                   `json:"count"`
}

// SyncHistoryResponse is the body of GET /api/v1/gateway/connections/{id}/syncs.
type SyncHistoryResponse struct {
	ConnectionID string               `json:"connection_id"`
	Syncs        []*session.SyncEvent `json:"syncs"`
	Count        int                  `json:"count"`
}

// MeshListResponse is the body of GET /api/v1/gateway/meshes.
type MeshListResponse struct {
	Meshes []MeshResponse `json:"meshes"`
	Count  int            `json:"count"`
}

// ProtocolsResponse is the body of GET /api/v1/gateway/protocols.
type ProtocolsResponse struct {
	Protocols []protocol.Info `json:"protocols"`
	Count     int             `json:"count"`
}

func meshToResponse(m *mesh.Mesh) MeshResponse {
	return MeshResponse{
		MeshID:      m.ID,
		Devices:     len(m.Devices),
		Topology:    string(m.Topology),
		Connections: m.Edges,
		Status:      m.Status,
	}
}
