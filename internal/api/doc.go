// Package api implements the bridge's local HTTP API.
//
// This package provides:
//   - Health and metrics endpoints for supervisors and dashboards
//   - Publish mode inspection and change
//   - Forwarding of raw commands to the RFLink receiver
//   - Configuration reset (same effect as a long button press)
//   - Middleware stack (request ID, logging, recovery, body size limit)
//
// # Architecture
//
// The server never touches the dispatcher or the mode store directly.
// Every mutation is queued on the bridge's command channel and executed by
// its control loop; the handler waits for the result or the request
// deadline, whichever comes first.
//
// # Graceful Degradation
//
// The API keeps answering while the broker or the serial link is down:
// /health reports the degraded component and mutations fail with the
// bridge's error.
package api
