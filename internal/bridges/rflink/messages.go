package rflink

import "time"

// HealthStatus represents the operational status of the bridge.
type HealthStatus string

const (
	// HealthHealthy indicates the bridge is operating normally.
	HealthHealthy HealthStatus = "healthy"

	// HealthDegraded indicates the bridge is running with a failed link.
	HealthDegraded HealthStatus = "degraded"

	// HealthStarting indicates the bridge is starting up.
	HealthStarting HealthStatus = "starting"

	// HealthStopping indicates the bridge is shutting down.
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is published on the gateway's $health topic.
// QoS: 1, Retained: Yes
type HealthMessage struct {
	// Gateway is the gateway identifier (e.g., "rflink-gateway").
	Gateway string `json:"gateway"`

	// Timestamp is when the status was generated (UTC).
	Timestamp time.Time `json:"timestamp"`

	Status HealthStatus `json:"status"`

	// Reason explains a degraded status.
	Reason string `json:"reason,omitempty"`

	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`

	// PublishMode is the active mode name ("STANDARD", "JSON" or "RAW").
	PublishMode string `json:"publish_mode"`

	Stats StatsSnapshot `json:"stats"`
}

// NewHealthMessage creates a health status message.
func NewHealthMessage(gatewayID, version string, status HealthStatus, mode PublishMode, stats StatsSnapshot, startTime time.Time) HealthMessage {
	return HealthMessage{
		Gateway:       gatewayID,
		Timestamp:     time.Now().UTC(),
		Status:        status,
		Version:       version,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		PublishMode:   mode.String(),
		Stats:         stats,
	}
}
