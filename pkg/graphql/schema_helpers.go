package graphql

import (
	"github.com/alice-platform/gateway-engine/pkg/mesh"
	"github.com/alice-platform/gateway-engine/pkg/session"
)

func connectionToMap(c *session.Connection) map[string]any {
	return map[string]any{
		"connectionId": c.ID,
		"deviceId":     c.DeviceID,
		"protocol":     c.Protocol,
		"region":       c.Region,
		"endpoint":     c.Endpoint,
		"status":       string(c.Status),
	}
}

func meshToMap(m *mesh.Mesh) map[string]any {
	edges := make([]map[string]any, 0, len(m.Edges))
	for _, e := range m.Edges {
		edges = append(edges, map[string]any{
			"from":      e.From,
			"to":        e.To,
			"latencyMs": e.LatencyMs,
		})
	}
	return map[string]any{
		"meshId":      m.ID,
		"topology":    string(m.Topology),
		"status":      m.Status,
		"devices":     m.Devices,
		"connections": edges,
	}
}
