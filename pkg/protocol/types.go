package protocol

// Protocol names supported by the gateway.
const (
	SDFStream  = "sdf-stream"
	MQTTBridge = "mqtt-bridge"
	GRPCRelay  = "grpc-relay"
)

// DefaultProtocol is used when a connect request does not name a protocol.
const DefaultProtocol = SDFStream

// Info describes a protocol the gateway can bridge.
type Info struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	LatencyMs      float64 `json:"latency_ms"`
	ThroughputMbps float64 `json:"throughput_mbps"`
}

// Envelope is the canonical intermediate form used when converting a payload
// between two protocols. Unwrap produces one from a source payload; Wrap
// renders it in the target protocol's framing.
type Envelope struct {
	Body any
	Meta map[string]any
}
