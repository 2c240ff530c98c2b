// Package gateway ties the protocol registry, connection table, sync ledger
// and mesh builder together behind one coordinator. Every API handler goes
// through the Gateway so that validation, counters, metrics and events stay
// consistent no matter which surface drove the operation.
package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alice-platform/gateway-engine/pkg/logging"
	"github.com/alice-platform/gateway-engine/pkg/mesh"
	"github.com/alice-platform/gateway-engine/pkg/metrics"
	"github.com/alice-platform/gateway-engine/pkg/protocol"
	"github.com/alice-platform/gateway-engine/pkg/pubsub"
	"github.com/alice-platform/gateway-engine/pkg/session"
)

// Config carries the tunables the Gateway exposes. The zero value is fully
// usable: defaults are applied in New.
type Config struct {
	// EndpointBase overrides the advertised connection endpoint prefix.
	EndpointBase string

	// LatencyModel overrides the mesh edge latency model.
	LatencyModel *mesh.LatencyModel

	Logger  logging.Logger
	Metrics *metrics.Registry
	Bus     *pubsub.Bus
}

// Gateway owns all gateway state. Safe for concurrent use; each component
// guards its own state and the coordinator holds no lock of its own.
type Gateway struct {
	protocols   *protocol.Registry
	transformer *protocol.Transformer
	table       *session.Table
	ledger      *session.Ledger
	builder     *mesh.Builder
	meshes      *mesh.Registry

	counters counters
	bus      *pubsub.Bus
	metrics  *metrics.Registry
	logger   logging.Logger

	startedAt time.Time
}

// New assembles a gateway from the config, filling in defaults for anything
// unset.
func New(cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRegistry()
	}
	if cfg.Bus == nil {
		cfg.Bus = pubsub.NewBus()
	}
	model := mesh.DefaultLatencyModel()
	if cfg.LatencyModel != nil {
		model = *cfg.LatencyModel
	}

	registry := protocol.NewRegistry()
	table := session.NewTable(cfg.EndpointBase)

	return &Gateway{
		protocols:   registry,
		transformer: protocol.NewTransformer(registry),
		table:       table,
		ledger:      session.NewLedger(table),
		builder:     mesh.NewBuilder(model),
		meshes:      mesh.NewRegistry(),
		bus:         cfg.Bus,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.With(logging.Component("gateway")),
		startedAt:   time.Now(),
	}
}

// Connect opens a connection for a device. Empty protocol and region fall
// back to the defaults; an unregistered protocol is rejected before any state
// changes.
func (g *Gateway) Connect(deviceID, protocolName, region string) (*session.Connection, error) {
	if protocolName == "" {
		protocolName = protocol.DefaultProtocol
	}
	if !g.protocols.Supports(protocolName) {
		return nil, fmt.Errorf("%w: %q", protocol.ErrUnsupportedProtocol, protocolName)
	}

	conn, err := g.table.Open(deviceID, protocolName, region)
	if err != nil {
		return nil, err
	}

	g.counters.connections.Add(1)
	g.metrics.RecordConnectionOpened(conn.Protocol, conn.Region)
	g.bus.Publish(pubsub.Event{Topic: pubsub.TopicConnections, Kind: "opened", Data: conn})
	g.logger.Info("connection opened",
		logging.ConnectionID(conn.ID),
		logging.DeviceID(conn.DeviceID),
		logging.Protocol(conn.Protocol),
	)
	return conn, nil
}

// Disconnect closes a connection. The record stays in the table; further
// syncs against it fail.
func (g *Gateway) Disconnect(connectionID string) (*session.Connection, error) {
	wasOpen := g.table.IsOpen(connectionID)
	conn, err := g.table.Close(connectionID)
	if err != nil {
		return nil, err
	}

	if wasOpen {
		g.metrics.RecordConnectionClosed()
		g.bus.Publish(pubsub.Event{Topic: pubsub.TopicConnections, Kind: "closed", Data: conn})
		g.logger.Info("connection closed", logging.ConnectionID(conn.ID))
	}
	return conn, nil
}

// Connection returns a tracked connection, open or closed.
func (g *Gateway) Connection(connectionID string) (*session.Connection, error) {
	return g.table.Get(connectionID)
}

// Connections returns every tracked connection.
func (g *Gateway) Connections() []*session.Connection {
	return g.table.List()
}

// Sync records a sync event against an open connection. Counters only move
// on success; a sync against an unknown or closed connection changes nothing.
func (g *Gateway) Sync(connectionID string, delta json.RawMessage, timestamp string) (*session.SyncEvent, error) {
	evt, err := g.ledger.Record(connectionID, delta, timestamp)
	if err != nil {
		return nil, err
	}

	g.counters.syncs.Add(1)
	g.counters.bytesRelayed.Add(evt.BytesTransferred)
	g.metrics.RecordSync(evt.ObjectsSynced, evt.BytesTransferred)
	g.bus.Publish(pubsub.Event{Topic: pubsub.TopicSyncs, Kind: "recorded", Data: evt})
	g.logger.Debug("sync recorded",
		logging.ConnectionID(connectionID),
		logging.Count(evt.ObjectsSynced),
		logging.Uint64("bytes", evt.BytesTransferred),
	)
	return evt, nil
}

// SyncHistory returns the retained sync events for a connection, oldest
// first.
func (g *Gateway) SyncHistory(connectionID string) ([]*session.SyncEvent, error) {
	return g.ledger.Events(connectionID)
}

// TransformResult is the outcome of one protocol conversion. Ephemeral: it
// is not retained beyond the response.
type TransformResult struct {
	ID        string `json:"transform_id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Output    any    `json:"output"`
	ElapsedUs int64  `json:"elapsed_us"`
}

// Transform converts a payload between two registered protocols, measuring
// the wall-clock cost of the conversion.
func (g *Gateway) Transform(source, target string, payload any) (*TransformResult, error) {
	start := time.Now()

	output, err := g.transformer.Transform(source, target, payload)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	result := &TransformResult{
		ID:        uuid.NewString(),
		Source:    source,
		Target:    target,
		Output:    output,
		ElapsedUs: elapsed.Microseconds(),
	}

	g.counters.transforms.Add(1)
	g.metrics.RecordTransform(source, target, elapsed)
	g.bus.Publish(pubsub.Event{Topic: pubsub.TopicTransforms, Kind: "executed", Data: result})
	return result, nil
}

// BuildMesh builds and retains a mesh over the listed devices.
func (g *Gateway) BuildMesh(devices []string, topology string) (*mesh.Mesh, error) {
	m, err := g.builder.Build(devices, mesh.Topology(topology))
	if err != nil {
		return nil, err
	}

	g.meshes.Put(m)
	g.metrics.RecordMeshBuilt(string(m.Topology), len(m.Edges))
	g.bus.Publish(pubsub.Event{Topic: pubsub.TopicMeshes, Kind: "built", Data: m})
	g.logger.Info("mesh built",
		logging.MeshID(m.ID),
		logging.Topology(string(m.Topology)),
		logging.Int("edges", len(m.Edges)),
	)
	return m, nil
}

// Mesh returns a retained mesh by id.
func (g *Gateway) Mesh(meshID string) (*mesh.Mesh, error) {
	return g.meshes.Get(meshID)
}

// Meshes returns every retained mesh, oldest first.
func (g *Gateway) Meshes() []*mesh.Mesh {
	return g.meshes.List()
}

// Protocols returns the registered protocol catalog.
func (g *Gateway) Protocols() []protocol.Info {
	return g.protocols.List()
}

// Stats returns a consistent snapshot of the counters plus current table and
// registry sizes.
func (g *Gateway) Stats() Stats {
	s := g.counters.snapshot()
	s.ActiveConnections = g.table.ActiveCount()
	s.ActiveMeshes = g.meshes.Count()
	return s
}

// TotalOps is the health rollup: connections opened plus syncs recorded.
func (g *Gateway) TotalOps() uint64 {
	return g.counters.connections.Load() + g.counters.syncs.Load()
}

// Uptime is the time since the gateway was assembled.
func (g *Gateway) Uptime() time.Duration {
	return time.Since(g.startedAt)
}

// Bus returns the in-process event bus.
func (g *Gateway) Bus() *pubsub.Bus {
	return g.bus
}

// Metrics returns the metrics registry the gateway records into.
func (g *Gateway) Metrics() *metrics.Registry {
	return g.metrics
}

// ActiveConnections returns the number of open connections.
func (g *Gateway) ActiveConnections() int {
	return g.table.ActiveCount()
}
