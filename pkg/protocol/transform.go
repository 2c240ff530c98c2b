package protocol

import "fmt"

// Transformer converts payloads between registered protocols.
//
// Conversion goes through the canonical Envelope: the source codec strips its
// framing from the payload and the target codec re-frames the body. Metadata
// that survives the trip (MQTT topic, gRPC method, SDF sequence number) is
// carried in Envelope.Meta so a round trip preserves it. The conversion is
// deterministic: the same payload and protocol pair always produce the same
// output.
type Transformer struct {
	registry *Registry
}

// NewTransformer creates a transformer backed by the given registry.
func NewTransformer(registry *Registry) *Transformer {
	return &Transformer{registry: registry}
}

// Transform converts payload from the source protocol's framing to the
// target's. Both protocols must be registered.
func (t *Transformer) Transform(source, target string, payload any) (any, error) {
	if !t.registry.Supports(source) {
		return nil, fmt.Errorf("%w: source %q", ErrUnsupportedProtocol, source)
	}
	if !t.registry.Supports(target) {
		return nil, fmt.Errorf("%w: target %q", ErrUnsupportedProtocol, target)
	}

	env := unwrap(source, payload)
	return wrap(target, env), nil
}

// unwrap strips the source protocol's envelope. Payloads that do not match
// the expected framing are treated as a bare body.
func unwrap(source string, payload any) Envelope {
	obj, ok := payload.(map[string]any)
	if !ok {
		return Envelope{Body: payload, Meta: map[string]any{}}
	}

	switch source {
	case SDFStream:
		frame, ok := obj["frame"].(map[string]any)
		if !ok {
			break
		}
		meta := map[string]any{}
		if seq, ok := obj["seq"]; ok {
			meta["seq"] = seq
		}
		return Envelope{Body: frame["delta"], Meta: meta}

	case MQTTBridge:
		body, ok := obj["payload"]
		if !ok {
			break
		}
		meta := map[string]any{}
		if topic, ok := obj["topic"]; ok {
			meta["topic"] = topic
		}
		if qos, ok := obj["qos"]; ok {
			meta["qos"] = qos
		}
		return Envelope{Body: body, Meta: meta}

	case GRPCRelay:
		body, ok := obj["body"]
		if !ok {
			break
		}
		meta := map[string]any{}
		if method, ok := obj["method"]; ok {
			meta["method"] = method
		}
		if md, ok := obj["metadata"]; ok {
			meta["metadata"] = md
		}
		return Envelope{Body: body, Meta: meta}
	}

	return Envelope{Body: payload, Meta: map[string]any{}}
}

// wrap frames the envelope body for the target protocol. Metadata from the
// source fills the target's fields where it applies; everything else gets a
// stable default.
func wrap(target string, env Envelope) any {
	switch target {
	case SDFStream:
		frame := map[string]any{
			"encoding": "sdf",
			"delta":    env.Body,
		}
		out := map[string]any{"frame": frame}
		if seq, ok := env.Meta["seq"]; ok {
			out["seq"] = seq
		} else {
			out["seq"] = float64(0)
		}
		return out

	case MQTTBridge:
		out := map[string]any{"payload": env.Body}
		if topic, ok := env.Meta["topic"]; ok {
			out["topic"] = topic
		} else {
			out["topic"] = "sdf/ingest"
		}
		if qos, ok := env.Meta["qos"]; ok {
			out["qos"] = qos
		} else {
			out["qos"] = float64(1)
		}
		return out

	case GRPCRelay:
		out := map[string]any{"body": env.Body}
		if method, ok := env.Meta["method"]; ok {
			out["method"] = method
		} else {
			out["method"] = "gateway.Relay/Forward"
		}
		if md, ok := env.Meta["metadata"]; ok {
			out["metadata"] = md
		} else {
			out["metadata"] = map[string]any{}
		}
		return out
	}

	// Unknown targets are rejected before we get here.
	return env.Body
}
