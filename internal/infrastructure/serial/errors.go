package serial

import "errors"

// Domain errors for the serial package.
var (
	// ErrOpenFailed is returned when the serial device cannot be opened or
	// configured.
	ErrOpenFailed = errors.New("serial: open failed")

	// ErrReadFailed is returned when reading from the device fails.
	ErrReadFailed = errors.New("serial: read failed")

	// ErrWriteFailed is returned when writing to the device fails.
	ErrWriteFailed = errors.New("serial: write failed")

	// ErrClosed is returned for operations on a closed port.
	ErrClosed = errors.New("serial: port closed")
)
