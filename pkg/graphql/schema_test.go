package graphql

import (
	"encoding/json"
	"testing"

	"github.com/alice-platform/gateway-engine/pkg/gateway"
)

func newTestGateway(t *testing.T) *gateway.Gateway {
	t.Helper()
	gw := gateway.New(gateway.Config{})

	conn, err := gw.Connect("device-1", "mqtt-bridge", "eu-west-1")
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := gw.Sync(conn.ID, json.RawMessage(`{"a":1,"b":2}`), ""); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if _, err := gw.BuildMesh([]string{"a", "b", "c"}, "ring"); err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}
	return gw
}

func TestGenerateSchema(t *testing.T) {
	if _, err := GenerateSchema(newTestGateway(t)); err != nil {
		t.Fatalf("GenerateSchema failed: %v", err)
	}
}

func TestQueryProtocols(t *testing.T) {
	schema, err := GenerateSchema(newTestGateway(t))
	if err != nil {
		t.Fatalf("GenerateSchema failed: %v", err)
	}

	result := ExecuteQuery(`{ protocols { name latencyMs throughputMbps } }`, schema)
	if result.HasErrors() {
		t.Fatalf("Query errors: %v", result.Errors)
	}

	data := result.Data.(map[string]any)
	protocols := data["protocols"].([]any)
	if len(protocols) != 3 {
		t.Errorf("Expected 3 protocols, got %d", len(protocols))
	}

	first := protocols[0].(map[string]any)
	if first["name"] != "sdf-stream" {
		t.Errorf("Expected sdf-stream first, got %v", first["name"])
	}
}

func TestQueryConnections(t *testing.T) {
	schema, err := GenerateSchema(newTestGateway(t))
	if err != nil {
		t.Fatalf("GenerateSchema failed: %v", err)
	}

	result := ExecuteQuery(`{ connections { connectionId deviceId protocol status } }`, schema)
	if result.HasErrors() {
		t.Fatalf("Query errors: %v", result.Errors)
	}

	data := result.Data.(map[string]any)
	conns := data["connections"].([]any)
	if len(conns) != 1 {
		t.Fatalf("Expected 1 connection, got %d", len(conns))
	}

	conn := conns[0].(map[string]any)
	if conn["deviceId"] != "device-1" || conn["protocol"] != "mqtt-bridge" {
		t.Errorf("Unexpected connection: %v", conn)
	}
}

func TestQueryConnectionByID(t *testing.T) {
	gw := newTestGateway(t)
	id := gw.Connections()[0].ID

	schema, err := GenerateSchema(gw)
	if err != nil {
		t.Fatalf("GenerateSchema failed: %v", err)
	}

	result := ExecuteQueryWithVariables(
		`query ($id: String!) { connection(id: $id) { connectionId region } }`,
		schema,
		map[string]any{"id": id},
	)
	if result.HasErrors() {
		t.Fatalf("Query errors: %v", result.Errors)
	}

	data := result.Data.(map[string]any)
	conn := data["connection"].(map[string]any)
	if conn["connectionId"] != id {
		t.Errorf("Expected id %s, got %v", id, conn["connectionId"])
	}
	if conn["region"] != "eu-west-1" {
		t.Errorf("Expected eu-west-1, got %v", conn["region"])
	}
}

func TestQueryUnknownConnectionErrors(t *testing.T) {
	schema, err := GenerateSchema(newTestGateway(t))
	if err != nil {
		t.Fatalf("GenerateSchema failed: %v", err)
	}

	result := ExecuteQuery(`{ connection(id: "nope") { connectionId } }`, schema)
	if !result.HasErrors() {
		t.Error("Expected error for unknown connection id")
	}
}

func TestQueryMeshesAndStats(t *testing.T) {
	schema, err := GenerateSchema(newTestGateway(t))
	if err != nil {
		t.Fatalf("GenerateSchema failed: %v", err)
	}

	result := ExecuteQuery(`{
		meshes { meshId topology connections { from to latencyMs } }
		stats { totalConnections totalSyncs activeMeshes }
	}`, schema)
	if result.HasErrors() {
		t.Fatalf("Query errors: %v", result.Errors)
	}

	data := result.Data.(map[string]any)
	meshes := data["meshes"].([]any)
	if len(meshes) != 1 {
		t.Fatalf("Expected 1 mesh, got %d", len(meshes))
	}
	edges := meshes[0].(map[string]any)["connections"].([]any)
	if len(edges) != 3 {
		t.Errorf("Expected 3 ring edges, got %d", len(edges))
	}

	stats := data["stats"].(map[string]any)
	if stats["totalConnections"] != 1 || stats["totalSyncs"] != 1 || stats["activeMeshes"] != 1 {
		t.Errorf("Unexpected stats: %v", stats)
	}
}
