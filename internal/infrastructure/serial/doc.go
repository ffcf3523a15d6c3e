// Package serial provides the link to the RFLink receiver.
//
// The receiver is an Arduino Mega running the RFLink firmware, attached over
// USB serial at 57600 baud, 8N1. Port wraps go.bug.st/serial with a short
// read timeout so the bridge control loop can poll it without blocking:
// ReadAvailable returns whatever arrived since the last call, possibly
// nothing.
//
// Usage:
//
//	port, err := serial.Open(cfg.Serial)
//	if err != nil {
//	    return err
//	}
//	defer port.Close()
//
//	chunk, err := port.ReadAvailable()
//	err = port.WriteLine("10;PING;")
package serial
