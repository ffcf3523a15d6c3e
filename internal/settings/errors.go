package settings

import "errors"

// Domain errors for the settings package.
var (
	// ErrReadFailed is returned when a cell cannot be read.
	ErrReadFailed = errors.New("settings: read failed")

	// ErrWriteFailed is returned when a cell cannot be written.
	ErrWriteFailed = errors.New("settings: write failed")
)
