package mesh

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoDevices is returned when a mesh request lists no devices.
	ErrNoDevices = errors.New("devices must not be empty")

	// ErrUnknownTopology is returned for topology names the builder does
	// not implement.
	ErrUnknownTopology = errors.New("unknown topology")
)

// Builder constructs meshes with a fixed latency model. It holds no mutable
// state and is safe for concurrent use.
type Builder struct {
	model LatencyModel
}

// NewBuilder creates a builder using the given latency model.
func NewBuilder(model LatencyModel) *Builder {
	return &Builder{model: model}
}

// Build computes the topology graph over the listed devices. An empty
// topology means full-mesh. A single device yields a mesh with zero edges.
// Self-edges are never emitted, even if the device list repeats an id.
func (b *Builder) Build(devices []string, topology Topology) (*Mesh, error) {
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}
	if topology == "" {
		topology = DefaultTopology
	}

	var pairs [][2]string
	switch topology {
	case TopologyLine:
		pairs = linePairs(devices)
	case TopologyRing:
		pairs = ringPairs(devices)
	case TopologyStar:
		pairs = starPairs(devices)
	case TopologyFullMesh:
		pairs = fullMeshPairs(devices)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopology, topology)
	}

	edges := make([]Edge, 0, len(pairs))
	for _, p := range pairs {
		if p[0] == p[1] {
			continue
		}
		edges = append(edges, Edge{
			From:      p[0],
			To:        p[1],
			LatencyMs: b.model.Latency(len(edges)),
		})
	}

	return &Mesh{
		ID:        uuid.NewString(),
		Devices:   append([]string(nil), devices...),
		Topology:  topology,
		Edges:     edges,
		Status:    "established",
		CreatedAt: time.Now(),
	}, nil
}

// linePairs links consecutive devices: (0,1), (1,2), ...
func linePairs(devices []string) [][2]string {
	pairs := make([][2]string, 0, len(devices))
	for i := 0; i+1 < len(devices); i++ {
		pairs = append(pairs, [2]string{devices[i], devices[i+1]})
	}
	return pairs
}

// ringPairs is a line plus the closing edge last->first.
func ringPairs(devices []string) [][2]string {
	pairs := linePairs(devices)
	if len(devices) >= 2 {
		pairs = append(pairs, [2]string{devices[len(devices)-1], devices[0]})
	}
	return pairs
}

// starPairs links the first device to every other device.
func starPairs(devices []string) [][2]string {
	pairs := make([][2]string, 0, len(devices))
	for i := 1; i < len(devices); i++ {
		pairs = append(pairs, [2]string{devices[0], devices[i]})
	}
	return pairs
}

// fullMeshPairs links every unordered pair, in device-list order.
func fullMeshPairs(devices []string) [][2]string {
	pairs := make([][2]string, 0, len(devices)*(len(devices)-1)/2)
	for i := 0; i < len(devices); i++ {
		for j := i + 1; j < len(devices); j++ {
			pairs = append(pairs, [2]string{devices[i], devices[j]})
		}
	}
	return pairs
}
