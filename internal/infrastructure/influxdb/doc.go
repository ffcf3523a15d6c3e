// Package influxdb provides an optional InfluxDB sink for the RFLink bridge.
//
// It wraps the official influxdb-client-go v2 library. When enabled, every
// parsed RFLink record is written as one point of the "rflink_record"
// measurement, tagged with the device name, so sensor history can be
// queried without an MQTT subscriber. Bridge counters are written to
// "rflink_bridge" alongside the MQTT health report.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // sink not configured
//	}
//	defer client.Close()
//
//	client.WriteRecord("Oregon TempHygro", "2D", fields, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are non-blocking and
// batched according to batch_size and flush_interval; write errors are
// delivered through SetOnError.
package influxdb
