package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the bridge.
const (
	// MeasurementRecord holds one point per received RFLink record.
	MeasurementRecord = "rflink_record"

	// MeasurementBridge holds the bridge's own counters.
	MeasurementBridge = "rflink_bridge"
)

// WriteRecord writes one received RFLink record.
//
// The device tag (e.g. "Oregon TempHygro") is the only tag; the sequence
// index and every record field become string fields. Values are kept
// verbatim because RFLink encodes most of them in protocol-specific hex.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteRecord("Oregon TempHygro", "2D", map[string]string{"ID": "2D1", "TEMP": "00cf"}, time.Now())
func (c *Client) WriteRecord(device, sequence string, fields map[string]string, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(recordPoint(device, sequence, fields, ts))
}

// WriteCounters writes a snapshot of bridge counters.
//
// Parameters:
//   - gatewayID: Tag identifying the gateway
//   - counters: Counter name to value, e.g. "publish_failures": 3
func (c *Client) WriteCounters(gatewayID string, counters map[string]uint64) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(counterPoint(gatewayID, counters, time.Now()))
}

// recordPoint builds the point for a received record.
func recordPoint(device, sequence string, fields map[string]string, ts time.Time) *write.Point {
	values := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	// A point without fields is rejected by the server, so the sequence
	// index is always present.
	values["msg_idx"] = sequence

	return write.NewPoint(
		MeasurementRecord,
		map[string]string{"device": device},
		values,
		ts,
	)
}

// counterPoint builds the point for a counter snapshot.
func counterPoint(gatewayID string, counters map[string]uint64, ts time.Time) *write.Point {
	values := make(map[string]interface{}, len(counters))
	for k, v := range counters {
		values[k] = v
	}
	return write.NewPoint(
		MeasurementBridge,
		map[string]string{"gateway": gatewayID},
		values,
		ts,
	)
}
