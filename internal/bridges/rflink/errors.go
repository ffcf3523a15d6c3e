package rflink

import "errors"

// Domain errors for the RFLink bridge package.
var (
	// ErrNotProtocolMessage is returned when a line does not carry the RFLink
	// header or has no sequence separator.
	ErrNotProtocolMessage = errors.New("rflink: not a protocol message")

	// ErrInvalidMode is returned for a publish mode outside 1..3.
	ErrInvalidMode = errors.New("rflink: invalid publish mode")

	// ErrModeLoad is returned when the persisted publish mode cannot be read.
	ErrModeLoad = errors.New("rflink: loading publish mode failed")

	// ErrModePersist is returned when the publish mode cannot be written.
	ErrModePersist = errors.New("rflink: persisting publish mode failed")

	// ErrPublishFailed is returned when a publication is rejected by the bus.
	ErrPublishFailed = errors.New("rflink: publish failed")

	// ErrSerialWrite is returned when a command cannot be written to the
	// receiver.
	ErrSerialWrite = errors.New("rflink: serial write failed")

	// ErrQueueFull is returned when the command queue has no free slot.
	ErrQueueFull = errors.New("rflink: command queue full")

	// ErrBridgeStopped is returned when a command is submitted after Stop.
	ErrBridgeStopped = errors.New("rflink: bridge stopped")

	// ErrUnknownCommand is returned for a command kind the loop cannot run.
	ErrUnknownCommand = errors.New("rflink: unknown command")
)
