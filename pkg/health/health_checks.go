package health

import (
	"runtime"
	"time"
)

// Gateway health check functions

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) Check {
	return Check{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now(),
	}
}

// ConnectionTableCheck reports the connection table's live and total counts.
func ConnectionTableCheck(getCounts func() (active, total int)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "connection_table",
			Details: make(map[string]any),
		}

		active, total := getCounts()

		check.Details["active_connections"] = active
		check.Details["tracked_connections"] = total

		check.Status = StatusHealthy
		check.Message = "Connection table reachable"
		return check
	}
}

// EventBusCheck reports whether the event pipeline is accepting publishes.
func EventBusCheck(isRunning func() bool) CheckFunc {
	return func() Check {
		check := Check{
			Name: "event_bus",
		}

		if isRunning() {
			check.Status = StatusHealthy
			check.Message = "Event bus running"
		} else {
			check.Status = StatusDegraded
			check.Message = "Event bus shut down"
		}

		return check
	}
}

// ProtocolRegistryCheck verifies the protocol catalog is populated.
func ProtocolRegistryCheck(protocolCount func() int) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "protocol_registry",
			Details: make(map[string]any),
		}

		n := protocolCount()
		check.Details["protocols"] = n

		if n == 0 {
			check.Status = StatusUnhealthy
			check.Message = "No protocols registered"
		} else {
			check.Status = StatusHealthy
			check.Message = "Protocol catalog loaded"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck() CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		check.Details["alloc_bytes"] = m.Alloc
		check.Details["sys_bytes"] = m.Sys

		usagePercent := float64(m.Alloc) / float64(m.Sys) * 100

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}
