// Package gpio reads the gateway's push button through the Linux GPIO
// character device.
//
// The button is wired between a GPIO line and ground with a pull-up, so it
// reads low while pressed. The line is requested with the kernel's
// active-low flag in that case, and Pressed reports the logical state.
package gpio

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	cdev "github.com/temoto/gpio-cdev-go"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/config"
)

// consumerLabel identifies the bridge in the kernel's line info.
const consumerLabel = "rflink-bridge"

// Domain errors for the gpio package.
var (
	// ErrOpenFailed is returned when the chip or line cannot be requested.
	ErrOpenFailed = errors.New("gpio: open failed")

	// ErrReadFailed is returned when the line value cannot be read.
	ErrReadFailed = errors.New("gpio: read failed")
)

// openChip opens a GPIO chip. Replaced in tests.
var openChip = func(path, consumer string) (cdev.Chiper, error) {
	return cdev.Open(path, consumer)
}

// Button is a single input line.
//
// Thread Safety: All methods are safe for concurrent use.
type Button struct {
	chip  cdev.Chiper
	lines cdev.Lineser
	line  uint32

	mu     sync.Mutex
	closed bool
}

// OpenButton requests the configured line as an input.
//
// Parameters:
//   - cfg: Button section of config.yaml (chip name or path, line offset)
//
// Returns:
//   - *Button: Ready for Pressed
//   - error: ErrOpenFailed (wrapped) if the chip or line is unavailable
func OpenButton(cfg config.ButtonConfig) (*Button, error) {
	path := chipPath(cfg.Chip)
	chip, err := openChip(path, consumerLabel)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, path, err)
	}

	flags := cdev.GPIOHANDLE_REQUEST_INPUT
	if cfg.ActiveLow {
		flags |= cdev.GPIOHANDLE_REQUEST_ACTIVE_LOW
	}

	lines, err := chip.OpenLines(flags, consumerLabel, cfg.Line)
	if err != nil {
		chip.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: %s line %d: %w", ErrOpenFailed, path, cfg.Line, err)
	}

	return &Button{chip: chip, lines: lines, line: cfg.Line}, nil
}

// Pressed returns true while the button is held down.
func (b *Button) Pressed() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false, fmt.Errorf("%w: line %d closed", ErrReadFailed, b.line)
	}
	data, err := b.lines.Read()
	if err != nil {
		return false, fmt.Errorf("%w: line %d: %w", ErrReadFailed, b.line, err)
	}
	return data.Values[0] != 0, nil
}

// Close releases the line and the chip. Safe to call multiple times.
func (b *Button) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return errors.Join(b.lines.Close(), b.chip.Close())
}

// chipPath accepts "gpiochip0" as well as "/dev/gpiochip0".
func chipPath(chip string) string {
	if strings.Contains(chip, "/") {
		return chip
	}
	return "/dev/" + chip
}
