package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/bridges/rflink"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	MQTT          LinkMetrics      `json:"mqtt"`
	Serial        LinkMetrics      `json:"serial"`
	Bridge        BridgeMetrics    `json:"bridge"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// LinkMetrics reports whether a link is usable.
type LinkMetrics struct {
	Connected bool `json:"connected"`
}

// BridgeMetrics contains the bridge's processing state and counters.
type BridgeMetrics struct {
	Running     bool                 `json:"running"`
	State       string               `json:"state"`
	PublishMode string               `json:"publish_mode"`
	Counters    rflink.StatsSnapshot `json:"counters"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// bytesPerMB converts runtime byte counters for display.
const bytesPerMB = 1024 * 1024

// handleMetrics returns runtime, link and bridge metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / bytesPerMB,
			MemoryTotalMB: float64(memStats.TotalAlloc) / bytesPerMB,
			NumGC:         memStats.NumGC,
		},
		MQTT:   LinkMetrics{Connected: s.bridge.MQTTConnected()},
		Serial: LinkMetrics{Connected: s.bridge.SerialHealthy()},
		Bridge: BridgeMetrics{
			Running:     s.bridge.Running(),
			State:       s.bridge.State().String(),
			PublishMode: s.bridge.Mode().String(),
			Counters:    s.bridge.Stats(),
		},
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
