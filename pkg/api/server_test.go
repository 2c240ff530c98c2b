package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alice-platform/gateway-engine/pkg/gateway"
	"github.com/alice-platform/gateway-engine/pkg/health"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	gw := gateway.New(gateway.Config{})
	s := NewServer(gw, nil)
	return s, s.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func connect(t *testing.T, handler http.Handler, deviceID string) map[string]any {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/connect",
		map[string]any{"device_id": deviceID})
	if rec.Code != http.StatusOK {
		t.Fatalf("connect failed: %d %s", rec.Code, rec.Body.String())
	}
	return decode[map[string]any](t, rec)
}

func TestConnectEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	conn := connect(t, handler, "thermostat-1")

	if conn["connection_id"] == "" {
		t.Error("Expected connection_id in response")
	}
	if conn["protocol"] != "sdf-stream" {
		t.Errorf("Expected default protocol, got %v", conn["protocol"])
	}
	if conn["region"] != "us-east-1" {
		t.Errorf("Expected default region, got %v", conn["region"])
	}
	if conn["endpoint"] != "wss://gateway.alice-platform.com/us-east-1" {
		t.Errorf("Unexpected endpoint %v", conn["endpoint"])
	}
	if conn["status"] != "connected" {
		t.Errorf("Expected connected status, got %v", conn["status"])
	}
}

func TestConnectMissingDeviceID(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/connect", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	envelope := decode[ErrorResponse](t, rec)
	if envelope.Kind != KindInvalidInput {
		t.Errorf("Expected %s kind, got %s", KindInvalidInput, envelope.Kind)
	}
	if envelope.Code != http.StatusBadRequest {
		t.Errorf("Expected code 400, got %d", envelope.Code)
	}
}

func TestConnectUnsupportedProtocol(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/connect",
		map[string]any{"device_id": "d1", "protocol": "carrier-pigeon"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	envelope := decode[ErrorResponse](t, rec)
	if envelope.Kind != KindUnsupportedProtocol {
		t.Errorf("Expected %s kind, got %s", KindUnsupportedProtocol, envelope.Kind)
	}
}

func TestConnectMalformedBody(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gateway/connect",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestSyncEndpoint(t *testing.T) {
	_, handler := newTestServer(t)
	conn := connect(t, handler, "sensor-1")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/sync", map[string]any{
		"connection_id": conn["connection_id"],
		"sdf_delta":     map[string]any{"a": 1, "b": 2, "c": 3},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("sync failed: %d %s", rec.Code, rec.Body.String())
	}

	resp := decode[SyncResponse](t, rec)
	if resp.SyncID == "" {
		t.Error("Expected sync_id")
	}
	if resp.Status != "completed" {
		t.Errorf("Expected completed, got %s", resp.Status)
	}
	if resp.ObjectsSynced != 3 {
		t.Errorf("Expected 3 objects, got %d", resp.ObjectsSynced)
	}
	if resp.SDFBytesTransferred == 0 {
		t.Error("Expected nonzero bytes transferred")
	}
}

func TestSyncUnknownConnection(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/sync",
		map[string]any{"connection_id": "no-such"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}

	envelope := decode[ErrorResponse](t, rec)
	if envelope.Kind != KindUnknownConnection {
		t.Errorf("Expected %s kind, got %s", KindUnknownConnection, envelope.Kind)
	}
}

func TestTransformEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/transform", map[string]any{
		"source_protocol": "mqtt-bridge",
		"target_protocol": "grpc-relay",
		"payload": map[string]any{
			"topic":   "sensors/1",
			"payload": map[string]any{"temp": 20.5},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("transform failed: %d %s", rec.Code, rec.Body.String())
	}

	resp := decode[map[string]any](t, rec)
	if resp["transform_id"] == "" {
		t.Error("Expected transform_id")
	}
	if resp["source"] != "mqtt-bridge" || resp["target"] != "grpc-relay" {
		t.Errorf("Unexpected source/target: %v/%v", resp["source"], resp["target"])
	}
	out := resp["output"].(map[string]any)
	if out["method"] != "gateway.Relay/Forward" {
		t.Errorf("Expected default gRPC method, got %v", out["method"])
	}
	if _, ok := resp["elapsed_us"]; !ok {
		t.Error("Expected elapsed_us field")
	}
}

func TestTransformUnknownProtocol(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/transform", map[string]any{
		"source_protocol": "smoke-signal",
		"target_protocol": "grpc-relay",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	envelope := decode[ErrorResponse](t, rec)
	if envelope.Kind != KindUnsupportedProtocol {
		t.Errorf("Expected %s kind, got %s", KindUnsupportedProtocol, envelope.Kind)
	}
}

func TestMeshEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/mesh", map[string]any{
		"devices":  []string{"a", "b", "c"},
		"topology": "ring",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("mesh failed: %d %s", rec.Code, rec.Body.String())
	}

	resp := decode[MeshResponse](t, rec)
	if resp.MeshID == "" {
		t.Error("Expected mesh_id")
	}
	if resp.Devices != 3 {
		t.Errorf("Expected device count 3, got %d", resp.Devices)
	}
	if len(resp.Connections) != 3 {
		t.Fatalf("Expected 3 ring edges, got %d", len(resp.Connections))
	}
	if resp.Connections[0].From != "a" || resp.Connections[0].To != "b" {
		t.Errorf("Unexpected first edge: %+v", resp.Connections[0])
	}
	if resp.Connections[2].From != "c" || resp.Connections[2].To != "a" {
		t.Errorf("Ring should close last to first: %+v", resp.Connections[2])
	}
	if resp.Connections[0].LatencyMs != 15.0 || resp.Connections[1].LatencyMs != 20.0 {
		t.Errorf("Unexpected latency sequence: %+v", resp.Connections)
	}
	if resp.Status != "established" {
		t.Errorf("Expected established, got %s", resp.Status)
	}
}

func TestMeshEmptyDevices(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/mesh",
		map[string]any{"devices": []string{}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	envelope := decode[ErrorResponse](t, rec)
	if envelope.Kind != KindInvalidInput {
		t.Errorf("Expected %s kind, got %s", KindInvalidInput, envelope.Kind)
	}
}

func TestProtocolsEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/gateway/protocols", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("protocols failed: %d", rec.Code)
	}

	resp := decode[ProtocolsResponse](t, rec)
	if resp.Count != 3 || len(resp.Protocols) != 3 {
		t.Fatalf("Expected 3 protocols, got %d", resp.Count)
	}
	if resp.Protocols[0].Name != "sdf-stream" {
		t.Errorf("Expected sdf-stream first, got %s", resp.Protocols[0].Name)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	conn := connect(t, handler, "d1")
	doJSON(t, handler, http.MethodPost, "/api/v1/gateway/sync",
		map[string]any{"connection_id": conn["connection_id"], "sdf_delta": map[string]any{"k": 1}})
	doJSON(t, handler, http.MethodPost, "/api/v1/gateway/mesh",
		map[string]any{"devices": []string{"a", "b"}})

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/gateway/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats failed: %d", rec.Code)
	}

	stats := decode[gateway.Stats](t, rec)
	if stats.TotalConnections != 1 || stats.TotalSyncs != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.ActiveMeshes != 1 {
		t.Errorf("Expected 1 active mesh, got %d", stats.ActiveMeshes)
	}
	if stats.BytesRelayed == 0 {
		t.Error("Expected nonzero bytes_relayed")
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	conn := connect(t, handler, "d1")
	doJSON(t, handler, http.MethodPost, "/api/v1/gateway/sync",
		map[string]any{"connection_id": conn["connection_id"]})

	rec := doJSON(t, handler, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health failed: %d", rec.Code)
	}

	resp := decode[HealthResponse](t, rec)
	if resp.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", resp.Status)
	}
	if resp.Version == "" {
		t.Error("Expected version")
	}
	if resp.UptimeSecs < 0 {
		t.Errorf("Uptime must be non-negative, got %d", resp.UptimeSecs)
	}
	// total_ops counts connections plus syncs.
	if resp.TotalOps != 2 {
		t.Errorf("Expected total_ops 2, got %d", resp.TotalOps)
	}
}

func TestHealthReportsRegisteredEventBusCheck(t *testing.T) {
	s, handler := newTestServer(t)

	running := false
	s.RegisterHealthCheck("event_bus", health.EventBusCheck(func() bool { return running }))

	rec := doJSON(t, handler, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Degraded must still answer 200, got %d", rec.Code)
	}
	resp := decode[HealthResponse](t, rec)
	if resp.Status != string(health.StatusDegraded) {
		t.Errorf("Expected degraded with bus stopped, got %s", resp.Status)
	}
	check, ok := resp.Checks["event_bus"]
	if !ok {
		t.Fatal("Expected event_bus check in health report")
	}
	if check.Status != health.StatusDegraded {
		t.Errorf("Expected degraded event_bus check, got %s", check.Status)
	}

	running = true
	rec = doJSON(t, handler, http.MethodGet, "/health", nil)
	resp = decode[HealthResponse](t, rec)
	if resp.Status != string(health.StatusHealthy) {
		t.Errorf("Expected healthy with bus running, got %s", resp.Status)
	}
}

func TestReadinessAndLivenessEndpoints(t *testing.T) {
	_, handler := newTestServer(t)

	for _, path := range []string{"/health/ready", "/health/live"} {
		rec := doJSON(t, handler, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s returned %d", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, handler := newTestServer(t)
	connect(t, handler, "d1")

	rec := doJSON(t, handler, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics failed: %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("gateway_connections_opened_total")) {
		t.Error("Expected gateway metrics in exposition")
	}
}

func TestConnectionLifecycleEndpoints(t *testing.T) {
	_, handler := newTestServer(t)
	conn := connect(t, handler, "d1")
	id := conn["connection_id"].(string)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/gateway/connections", nil)
	list := decode[ConnectionsResponse](t, rec)
	if list.Count != 1 {
		t.Fatalf("Expected 1 connection, got %d", list.Count)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/gateway/connections/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get connection failed: %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/gateway/connections/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disconnect failed: %d", rec.Code)
	}
	closed := decode[map[string]any](t, rec)
	if closed["status"] != "closed" {
		t.Errorf("Expected closed status, got %v", closed["status"])
	}

	// Syncs against a closed connection fail.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/gateway/sync",
		map[string]any{"connection_id": id})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 syncing closed connection, got %d", rec.Code)
	}
}

func TestSyncHistoryEndpoint(t *testing.T) {
	_, handler := newTestServer(t)
	conn := connect(t, handler, "d1")
	id := conn["connection_id"].(string)

	for i := 0; i < 2; i++ {
		doJSON(t, handler, http.MethodPost, "/api/v1/gateway/sync",
			map[string]any{"connection_id": id, "sdf_delta": []int{1, 2, 3}})
	}

	rec := doJSON(t, handler, http.MethodGet,
		fmt.Sprintf("/api/v1/gateway/connections/%s/syncs", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync history failed: %d", rec.Code)
	}

	resp := decode[SyncHistoryResponse](t, rec)
	if resp.Count != 2 {
		t.Errorf("Expected 2 syncs, got %d", resp.Count)
	}
	if resp.Syncs[0].ObjectsSynced != 3 {
		t.Errorf("Expected 3 objects, got %d", resp.Syncs[0].ObjectsSynced)
	}
}

func TestMeshRegistryEndpoints(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/mesh",
		map[string]any{"devices": []string{"a", "b"}, "topology": "line"})
	created := decode[MeshResponse](t, rec)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/gateway/meshes", nil)
	list := decode[MeshListResponse](t, rec)
	if list.Count != 1 {
		t.Fatalf("Expected 1 mesh, got %d", list.Count)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/gateway/meshes/"+created.MeshID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get mesh failed: %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/gateway/meshes/unknown-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown mesh, got %d", rec.Code)
	}
}

func TestGraphQLEndpoint(t *testing.T) {
	_, handler := newTestServer(t)
	connect(t, handler, "d1")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gateway/graphql",
		map[string]any{"query": "{ stats { totalConnections } }"})
	if rec.Code != http.StatusOK {
		t.Fatalf("graphql failed: %d %s", rec.Code, rec.Body.String())
	}

	resp := decode[map[string]any](t, rec)
	data := resp["data"].(map[string]any)
	stats := data["stats"].(map[string]any)
	if stats["totalConnections"] != float64(1) {
		t.Errorf("Expected 1 connection via GraphQL, got %v", stats["totalConnections"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/gateway/connect", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/gateway/stats", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestRequestIDHeaderPropagated(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/gateway/protocols", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID response header")
	}
}
