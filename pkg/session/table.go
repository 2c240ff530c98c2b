package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyDeviceID is returned when a connect request has no device id.
	ErrEmptyDeviceID = errors.New("device_id must not be empty")

	// ErrUnknownConnection is returned when an operation references a
	// connection id that is not in the table.
	ErrUnknownConnection = errors.New("unknown connection")
)

// Defaults applied when a connect request leaves fields blank.
const (
	DefaultRegion = "us-east-1"

	// DefaultEndpointBase is the endpoint template; the region is appended.
	DefaultEndpointBase = "wss://gateway.alice-platform.com"
)

// Table tracks active logical connections. A single RWMutex guards the map;
// operations only hold it for the duration of the map access, never across
// serialization or I/O. Every accessor returns a detached copy of the
// record, so Close cannot race callers that are still reading a result.
type Table struct {
	mu           sync.RWMutex
	connections  map[string]*Connection
	endpointBase string
}

// NewTable creates an empty connection table. endpointBase overrides the
// advertised endpoint prefix; empty means DefaultEndpointBase.
func NewTable(endpointBase string) *Table {
	if endpointBase == "" {
		endpointBase = DefaultEndpointBase
	}
	return &Table{
		connections:  make(map[string]*Connection),
		endpointBase: endpointBase,
	}
}

// Open registers a new connection for the device and returns it. The
// connection id is a random UUID, unique per process lifetime (and beyond).
// protocol and region must already be defaulted/validated by the caller.
func (t *Table) Open(deviceID, protocol, region string) (*Connection, error) {
	if deviceID == "" {
		return nil, ErrEmptyDeviceID
	}
	if region == "" {
		region = DefaultRegion
	}

	conn := &Connection{
		ID:       uuid.NewString(),
		DeviceID: deviceID,
		Protocol: protocol,
		Region:   region,
		Endpoint: fmt.Sprintf("%s/%s", t.endpointBase, region),
		Status:   StatusConnected,
		OpenedAt: time.Now(),
	}

	t.mu.Lock()
	t.connections[conn.ID] = conn
	t.mu.Unlock()

	return conn.snapshot(), nil
}

// Get returns the connection with the given id, open or closed.
func (t *Table) Get(id string) (*Connection, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	conn, ok := t.connections[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConnection, id)
	}
	return conn.snapshot(), nil
}

// Close marks the connection closed. The record is retained so lookups keep
// working; sync operations treat a closed connection as gone.
func (t *Table) Close(id string) (*Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	conn, ok := t.connections[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConnection, id)
	}
	if conn.Status != StatusClosed {
		conn.Status = StatusClosed
		conn.ClosedAt = time.Now()
	}
	return conn.snapshot(), nil
}

// IsOpen reports whether id names a connection that is still syncable.
func (t *Table) IsOpen(id string) bool {
	t.mu.RLock()
	conn, ok := t.connections[id]
	t.mu.RUnlock()
	return ok && conn.Status == StatusConnected
}

// List returns all tracked connections, open and closed.
func (t *Table) List() []*Connection {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Connection, 0, len(t.connections))
	for _, conn := range t.connections {
		out = append(out, conn.snapshot())
	}
	return out
}

// ActiveCount returns the number of open connections.
func (t *Table) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, conn := range t.connections {
		if conn.Status == StatusConnected {
			n++
		}
	}
	return n
}
