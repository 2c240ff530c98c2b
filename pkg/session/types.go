package session

import "time"

// Status of a logical connection.
type Status string

const (
	StatusConnecting Status = "connecting"
	StatusConnected  Status = "connected"
	StatusClosed     Status = "closed"
)

// Connection is one logical device connection through the gateway.
type Connection struct {
	ID       string `json:"connection_id"`
	DeviceID string `json:"device_id"`
	Protocol string `json:"protocol"`
	Region   string `json:"region"`
	Endpoint string `json:"endpoint"`
	Status   Status `json:"status"`

	OpenedAt time.Time `json:"opened_at"`
	ClosedAt time.Time `json:"closed_at,omitzero"`
}

// snapshot returns a detached copy. The table hands out snapshots only, so
// callers can marshal them without holding the table lock.
func (c *Connection) snapshot() *Connection {
	out := *c
	return &out
}

// SyncEvent records one sync call against a connection. Events are immutable
// once recorded.
type SyncEvent struct {
	ID               string    `json:"sync_id"`
	ConnectionID     string    `json:"connection_id"`
	ObjectsSynced    int       `json:"objects_synced"`
	BytesTransferred uint64    `json:"sdf_bytes_transferred"`
	LatencyMs        float64   `json:"latency_ms"`
	Timestamp        string    `json:"timestamp,omitempty"`
	RecordedAt       time.Time `json:"recorded_at"`

	// Delta payload, snappy-compressed. Not serialized with the event.
	compressed []byte
}
