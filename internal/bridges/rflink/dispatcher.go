package rflink

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Publisher sends a publication to the bus. topic is relative to the node
// (e.g. "rawmsg" or "Oregon TempHygro/2D1").
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
}

// SerialPort is the link to the RFLink receiver.
type SerialPort interface {
	// ReadAvailable returns the bytes available now, possibly none.
	// It must not block longer than the port's short read timeout.
	ReadAvailable() ([]byte, error)

	// WriteLine writes text followed by "\r\n".
	WriteLine(text string) error
}

// RecordSink receives every parsed record. It is optional.
type RecordSink interface {
	WriteRecord(device, sequence string, fields map[string]string, ts time.Time)
}

// Logger is the interface for structured logging.
// This is satisfied by *logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// State is the dispatcher's processing stage.
type State int32

// Dispatcher states. Each chunk walks Framing, then Parsing, Encoding and
// Publishing per line, and ends in Idle.
const (
	StateIdle State = iota
	StateFraming
	StateParsing
	StateEncoding
	StatePublishing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFraming:
		return "framing"
	case StateParsing:
		return "parsing"
	case StateEncoding:
		return "encoding"
	case StatePublishing:
		return "publishing"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// PublicationOutcome reports whether one publication reached the bus.
type PublicationOutcome struct {
	Topic   string
	Success bool
}

// DispatcherConfig holds the dependencies of a Dispatcher.
type DispatcherConfig struct {
	// Publisher is required.
	Publisher Publisher

	// Store is required.
	Store *ModeStore

	// Serial is required for Forward.
	Serial SerialPort

	// Sink is optional.
	Sink RecordSink

	// Stats is optional; a private instance is used when nil.
	Stats *Stats

	// Logger is optional.
	Logger Logger
}

// Dispatcher runs the framing, parsing, encoding and publishing pipeline.
// It is driven by a single goroutine (the bridge control loop); only State
// and Stats may be read from elsewhere.
type Dispatcher struct {
	framer    *Framer
	store     *ModeStore
	publisher Publisher
	serial    SerialPort
	sink      RecordSink
	stats     *Stats
	state     atomic.Int32
	now       func() time.Time

	logger   Logger
	loggerMu sync.RWMutex
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("mode store is required")
	}
	stats := cfg.Stats
	if stats == nil {
		stats = &Stats{}
	}
	return &Dispatcher{
		framer:    NewFramer(),
		store:     cfg.Store,
		publisher: cfg.Publisher,
		serial:    cfg.Serial,
		sink:      cfg.Sink,
		stats:     stats,
		now:       time.Now,
		logger:    cfg.Logger,
	}, nil
}

// SetLogger sets the logger.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.loggerMu.Lock()
	d.logger = logger
	d.loggerMu.Unlock()
}

// State returns the current processing stage.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Stats returns the dispatcher's counters.
func (d *Dispatcher) Stats() *Stats {
	return d.stats
}

// Pending returns the number of unterminated bytes held by the framer.
func (d *Dispatcher) Pending() int {
	return d.framer.Pending()
}

// ProcessChunk frames a serial chunk and handles every completed line
// before returning.
//
// Returns:
//   - []PublicationOutcome: One entry per publication attempted, including
//     error reports
func (d *Dispatcher) ProcessChunk(chunk []byte) []PublicationOutcome {
	d.setState(StateFraming)
	defer d.setState(StateIdle)

	lines := d.framer.Feed(chunk)
	d.stats.LinesFramed.Add(uint64(len(lines)))

	var outcomes []PublicationOutcome
	for _, line := range lines {
		outcomes = append(outcomes, d.processLine(line)...)
	}
	return outcomes
}

// processLine parses, encodes and publishes one line.
func (d *Dispatcher) processLine(line string) []PublicationOutcome {
	d.setState(StateParsing)
	rec, err := Parse(line)
	if err != nil {
		d.stats.Unsupported.Add(1)
		d.logDebug("unsupported line", "line", line, "reason", err)
		d.setState(StatePublishing)
		return d.publishReporting(UnsupportedPublication(line), PropertyUnsupported)
	}
	d.stats.RecordsParsed.Add(1)

	if d.sink != nil {
		d.sink.WriteRecord(rec.Tag.Name, rec.Sequence, rec.FieldMap(), d.now())
	}

	d.setState(StateEncoding)
	pubs := Encode(rec, d.store.Get())

	d.setState(StatePublishing)
	var outcomes []PublicationOutcome
	for _, p := range pubs {
		outcomes = append(outcomes, d.publishReporting(p, rec.Tag.Name)...)
	}
	return outcomes
}

// publishReporting publishes p and, if it is rejected, publishes exactly one
// error report naming name. A rejected error report is only logged.
func (d *Dispatcher) publishReporting(p Publication, name string) []PublicationOutcome {
	err := d.publish(p)
	outcomes := []PublicationOutcome{{Topic: p.Property, Success: err == nil}}
	if err == nil {
		return outcomes
	}

	d.logWarn("publication rejected", "topic", p.Property, "error", err)
	report := ErrorPublication(name)
	reportErr := d.publish(report)
	if reportErr != nil {
		d.logError("error report rejected", reportErr, "topic", p.Property)
	}
	return append(outcomes, PublicationOutcome{Topic: report.Property, Success: reportErr == nil})
}

// publish sends p and updates counters.
func (d *Dispatcher) publish(p Publication) error {
	if err := d.publisher.Publish(p.Property, p.Payload, p.Retained); err != nil {
		d.stats.PublishFailures.Add(1)
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, p.Property, err)
	}
	d.stats.Published.Add(1)
	return nil
}

// SetMode applies a mode command. A change is persisted and confirmed on
// the publish-mode property; setting the active mode does nothing.
//
// Returns:
//   - bool: true if the mode changed
//   - error: ErrModePersist if the store could not persist (mode unchanged),
//     or ErrPublishFailed if the confirmation was rejected (mode changed)
func (d *Dispatcher) SetMode(ctx context.Context, mode PublishMode) (bool, error) {
	previous, err := d.store.Set(ctx, mode)
	if err != nil {
		return false, err
	}
	if previous == mode {
		return false, nil
	}

	d.stats.ModeChanges.Add(1)
	d.logInfo("publish mode changed", "from", previous.String(), "to", mode.String())
	return true, d.publish(ModePublication(mode))
}

// Reset handles a configuration reset: the mode is forced to STANDARD,
// persisted, and announced.
func (d *Dispatcher) Reset(ctx context.Context) error {
	previous := d.store.Get()
	if err := d.store.Reset(ctx); err != nil {
		return err
	}
	if previous != ModeStandard {
		d.stats.ModeChanges.Add(1)
	}
	d.framer.Reset()
	d.logInfo("configuration reset", "previous_mode", previous.String())
	return d.publish(ModePublication(ModeStandard))
}

// AnnounceMode publishes the active mode.
func (d *Dispatcher) AnnounceMode() error {
	return d.publish(ModePublication(d.store.Get()))
}

// ButtonPressed publishes a button press.
func (d *Dispatcher) ButtonPressed() error {
	d.stats.ButtonPresses.Add(1)
	return d.publish(ButtonPublication())
}

// Forward writes an opaque command to the receiver.
func (d *Dispatcher) Forward(text string) error {
	if d.serial == nil {
		return fmt.Errorf("%w: no serial port", ErrSerialWrite)
	}
	if err := d.serial.WriteLine(text); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialWrite, err)
	}
	d.stats.CommandsForwarded.Add(1)
	d.logDebug("command forwarded", "command", text)
	return nil
}

func (d *Dispatcher) setState(s State) {
	d.state.Store(int32(s))
}

func (d *Dispatcher) getLogger() Logger {
	d.loggerMu.RLock()
	defer d.loggerMu.RUnlock()
	return d.logger
}

func (d *Dispatcher) logDebug(msg string, args ...any) {
	if logger := d.getLogger(); logger != nil {
		logger.Debug(msg, args...)
	}
}

func (d *Dispatcher) logInfo(msg string, args ...any) {
	if logger := d.getLogger(); logger != nil {
		logger.Info(msg, args...)
	}
}

func (d *Dispatcher) logWarn(msg string, args ...any) {
	if logger := d.getLogger(); logger != nil {
		logger.Warn(msg, args...)
	}
}

func (d *Dispatcher) logError(msg string, err error, args ...any) {
	if logger := d.getLogger(); logger != nil {
		logger.Error(msg, append([]any{"error", err}, args...)...)
	}
}
