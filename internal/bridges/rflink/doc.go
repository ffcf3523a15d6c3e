// Package rflink implements the RFLink serial to MQTT bridge engine.
//
// An RFLink receiver reports decoded 433 MHz traffic as semicolon separated
// text lines on a serial port. This package turns that byte stream into MQTT
// publications and forwards commands from the bus back to the receiver.
//
// # Architecture
//
//	┌──────────┐  bytes  ┌────────┐  lines  ┌────────┐ records ┌─────────┐
//	│  serial  │────────►│ Framer │────────►│ Parse  │────────►│ Encode  │──► MQTT
//	└──────────┘         └────────┘         └────────┘         └─────────┘
//	     ▲                                                          ▲
//	     │ to-send                                   publish mode   │
//	     └──────────────── Bridge (control loop) ──── ModeStore ────┘
//
// The Bridge owns a single control loop. Commands from MQTT handlers or the
// HTTP API are queued and executed by that loop, so the Dispatcher and the
// ModeStore are never touched concurrently.
//
// # Record format
//
// A protocol line starts with the "20" header, followed by a sequence index,
// a device name and key=value fields:
//
//	20;2D;Oregon TempHygro;ID=2D1;TEMP=00cf;HUM=16;HSTATUS=1;BAT=OK;
//
// Lines that do not start with the header are published verbatim on the
// "unsupported" property.
//
// # Publish modes
//
//   - STANDARD (1): topic "<device>/<first field value>", JSON object of the
//     remaining fields. VERSION, PONG and the debug tags publish on the tag.
//   - JSON (2): everything on "JSONmsg" as one JSON object.
//   - RAW (3): the unmodified line on "rawmsg".
//
// DEBUG records are always published RAW without changing the stored mode.
//
// # Thread Safety
//
// Framer, Dispatcher and Debouncer are owned by the control loop and are not
// safe for concurrent use. Bridge, ModeStore and Stats are.
package rflink
