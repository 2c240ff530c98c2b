package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
)

// maxEventsPerConnection bounds the retained history so a chatty device
// cannot grow memory without limit. Oldest events are dropped first.
const maxEventsPerConnection = 256

// Ledger records sync events per connection. Events hold a non-owning
// reference to the connection by id; the ledger validates existence against
// the table before accepting a record.
type Ledger struct {
	mu     sync.Mutex
	table  *Table
	events map[string][]*SyncEvent
}

// NewLedger creates a ledger validating against the given connection table.
func NewLedger(table *Table) *Ledger {
	return &Ledger{
		table:  table,
		events: make(map[string][]*SyncEvent),
	}
}

// Record validates the connection and records one sync event. delta is the
// raw JSON of the sdf_delta field (nil when the request omitted it);
// objects_synced counts its top-level entries and sdf_bytes_transferred is
// its serialized length. Latency is the measured wall-clock duration of the
// record operation.
func (l *Ledger) Record(connectionID string, delta json.RawMessage, timestamp string) (*SyncEvent, error) {
	start := time.Now()

	if !l.table.IsOpen(connectionID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConnection, connectionID)
	}

	evt := &SyncEvent{
		ID:            uuid.NewString(),
		ConnectionID:  connectionID,
		ObjectsSynced: countTopLevelEntries(delta),
		Timestamp:     timestamp,
		RecordedAt:    start,
	}
	if len(delta) > 0 {
		evt.BytesTransferred = uint64(len(delta))
		evt.compressed = snappy.Encode(nil, delta)
	}

	// The event must be complete before it enters the history map; Events
	// hands out the same pointers and never locks individual events.
	evt.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0

	l.mu.Lock()
	history := append(l.events[connectionID], evt)
	if len(history) > maxEventsPerConnection {
		history = history[len(history)-maxEventsPerConnection:]
	}
	l.events[connectionID] = history
	l.mu.Unlock()

	return evt, nil
}

// Events returns the retained sync history for a connection, oldest first.
func (l *Ledger) Events(connectionID string) ([]*SyncEvent, error) {
	if _, err := l.table.Get(connectionID); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.events[connectionID]
	out := make([]*SyncEvent, len(history))
	copy(out, history)
	return out, nil
}

// Delta decompresses and returns the event's retained payload, or nil if
// the sync carried none.
func (e *SyncEvent) Delta() (json.RawMessage, error) {
	if e.compressed == nil {
		return nil, nil
	}
	raw, err := snappy.Decode(nil, e.compressed)
	if err != nil {
		return nil, fmt.Errorf("decode retained delta: %w", err)
	}
	return raw, nil
}

// countTopLevelEntries counts top-level keys of an object or elements of an
// array. Scalars count as one object; empty or absent deltas count as zero.
func countTopLevelEntries(delta json.RawMessage) int {
	if len(delta) == 0 {
		return 0
	}

	var v any
	if err := json.Unmarshal(delta, &v); err != nil {
		return 0
	}

	switch val := v.(type) {
	case map[string]any:
		return len(val)
	case []any:
		return len(val)
	case nil:
		return 0
	default:
		return 1
	}
}
