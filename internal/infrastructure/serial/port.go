package serial

import (
	"fmt"
	"io"
	"sync"
	"time"

	bugst "go.bug.st/serial"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/config"
)

// Port defaults, matching the RFLink firmware.
const (
	defaultBaudRate    = 57600
	defaultChunkSize   = 256
	defaultReadTimeout = 10 * time.Millisecond

	// lineTerminator ends every command sent to the receiver.
	lineTerminator = "\r\n"
)

// rawPort is the part of bugst.Port used here.
type rawPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

// openPort opens the device. Replaced in tests.
var openPort = func(device string, mode *bugst.Mode) (rawPort, error) {
	return bugst.Open(device, mode)
}

// Port is an open serial link to the receiver.
//
// Thread Safety: ReadAvailable and WriteLine may be called from different
// goroutines; each is serialised with itself.
type Port struct {
	port   rawPort
	device string
	buf    []byte

	readMu  sync.Mutex
	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
}

// Open opens and configures the serial device.
//
// Parameters:
//   - cfg: Serial section of config.yaml
//
// Returns:
//   - *Port: Ready for ReadAvailable and WriteLine
//   - error: ErrOpenFailed (wrapped) if the device is missing or busy
func Open(cfg config.SerialConfig) (*Port, error) {
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = defaultBaudRate
	}
	chunk := cfg.ReadChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}
	timeout := time.Duration(cfg.ReadTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}

	port, err := openPort(cfg.Device, &bugst.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, cfg.Device, err)
	}

	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: %s: setting read timeout: %w", ErrOpenFailed, cfg.Device, err)
	}

	return &Port{
		port:   port,
		device: cfg.Device,
		buf:    make([]byte, chunk),
		closed: make(chan struct{}),
	}, nil
}

// ReadAvailable returns the bytes received since the last call, at most
// one chunk. It blocks for at most the read timeout and returns an empty
// slice when nothing arrived.
func (p *Port) ReadAvailable() ([]byte, error) {
	if p.isClosed() {
		return nil, ErrClosed
	}

	p.readMu.Lock()
	defer p.readMu.Unlock()

	n, err := p.port.Read(p.buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, p.device, err)
	}
	if n == 0 {
		return nil, nil
	}

	chunk := make([]byte, n)
	copy(chunk, p.buf[:n])
	return chunk, nil
}

// WriteLine writes text followed by "\r\n".
func (p *Port) WriteLine(text string) error {
	if p.isClosed() {
		return ErrClosed
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	data := []byte(text + lineTerminator)
	for len(data) > 0 {
		n, err := p.port.Write(data)
		if err == nil && n == 0 {
			err = io.ErrShortWrite
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWriteFailed, p.device, err)
		}
		data = data[n:]
	}
	return nil
}

// Device returns the device path.
func (p *Port) Device() string {
	return p.device
}

// Close closes the port. Safe to call multiple times.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.closed)
		err = p.port.Close()
	})
	return err
}

func (p *Port) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}
