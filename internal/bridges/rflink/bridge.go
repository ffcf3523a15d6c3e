package rflink

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Bridge operation defaults.
const (
	// defaultPollInterval is how often the control loop polls its inputs.
	defaultPollInterval = 20 * time.Millisecond

	// defaultQueueSize bounds the command queue.
	defaultQueueSize = 32

	// defaultDebounce matches the 50ms debounce of RFLink gateway boards.
	defaultDebounce = 50 * time.Millisecond

	// commandQoS is used for command subscriptions and node publications.
	commandQoS byte = 1

	// setSuffix is appended to a property to form its command topic.
	setSuffix = "/set"
)

// Bridge connects an RFLink receiver to MQTT.
// It handles:
//   - Polling the serial port and publishing every received line
//   - Forwarding to-send commands to the receiver
//   - Publish mode changes, configuration reset and the physical button
//   - Health reporting and graceful shutdown
//
// Thread Safety: All exported methods are safe for concurrent use. The
// pipeline itself runs on the control loop goroutine only.
type Bridge struct {
	opts       BridgeOptions
	mqtt       MQTTClient
	serial     SerialPort
	button     ButtonInput
	store      *ModeStore
	dispatcher *Dispatcher
	debouncer  *Debouncer
	health     *HealthReporter
	stats      *Stats

	commands chan Command

	// serialFailing is set while ReadAvailable keeps failing.
	serialFailing atomic.Bool
	buttonFailing bool

	// Shutdown coordination
	started  atomic.Bool
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// GatewayID identifies this gateway in health messages.
	GatewayID string

	// Version is reported in health messages.
	Version string

	// NodeTopic is the node base topic, e.g. homie/rflink-gateway/serial01.
	// Publications go to NodeTopic/<property>.
	NodeTopic string

	// HealthTopic is where health messages are published.
	HealthTopic string

	// PollInterval is the control loop period. Default: 20ms.
	PollInterval time.Duration

	// Debounce is the button debounce interval. Default: 50ms.
	Debounce time.Duration

	// ResetHold is how long the button must be held for a configuration
	// reset. Zero disables the long press.
	ResetHold time.Duration

	// HealthInterval is the health report period. Default: 30s.
	HealthInterval time.Duration

	// QueueSize bounds the command queue. Default: 32.
	QueueSize int

	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Serial is the link to the receiver.
	Serial SerialPort

	// ModeCell persists the publish mode.
	ModeCell ModeCell

	// Button is optional. If nil, no button is polled.
	Button ButtonInput

	// RecordSink optionally archives parsed records.
	RecordSink RecordSink

	// CounterSink optionally archives counters with each health report.
	CounterSink CounterSink

	// Logger is optional structured logger.
	Logger Logger
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Serial == nil {
		return nil, fmt.Errorf("serial port is required")
	}
	if opts.ModeCell == nil {
		return nil, fmt.Errorf("mode cell is required")
	}
	if opts.NodeTopic == "" {
		return nil, fmt.Errorf("node topic is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}

	stats := &Stats{}
	store := NewModeStore(opts.ModeCell)

	b := &Bridge{
		opts:      opts,
		mqtt:      opts.MQTTClient,
		serial:    opts.Serial,
		button:    opts.Button,
		store:     store,
		debouncer: NewDebouncer(opts.Debounce, opts.ResetHold),
		stats:     stats,
		commands:  make(chan Command, opts.QueueSize),
		done:      make(chan struct{}),
		logger:    opts.Logger,
	}

	dispatcher, err := NewDispatcher(DispatcherConfig{
		Publisher: &nodePublisher{client: opts.MQTTClient, node: opts.NodeTopic},
		Store:     store,
		Serial:    opts.Serial,
		Sink:      opts.RecordSink,
		Stats:     stats,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	b.dispatcher = dispatcher

	b.health = NewHealthReporter(HealthReporterConfig{
		GatewayID: opts.GatewayID,
		Version:   opts.Version,
		Topic:     opts.HealthTopic,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTTClient,
		Stats:     stats,
		Mode:      store.Get,
		SerialOK:  func() bool { return !b.serialFailing.Load() },
		Counters:  opts.CounterSink,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}

	return b, nil
}

// Start loads the persisted mode, announces it, subscribes to the command
// topics and starts the control loop and health reporting.
//
// A mode cell failure aborts the start.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	if err := b.store.Load(ctx); err != nil {
		return fmt.Errorf("loading publish mode: %w", err)
	}
	if err := b.dispatcher.AnnounceMode(); err != nil {
		b.logError("failed to announce publish mode", err)
	}

	if b.button != nil {
		pressed, err := b.button.Pressed()
		if err != nil {
			b.logError("failed to read button", err)
		}
		b.debouncer.Prime(pressed, time.Now())
	}

	for _, property := range []string{PropertyToSend, PropertyPublishMode, PropertyMode} {
		topic := b.commandTopic(property)
		if err := b.mqtt.Subscribe(topic, commandQoS, b.handleMQTTMessage); err != nil {
			return fmt.Errorf("subscribe to %s: %w", topic, err)
		}
		b.logInfo("subscribed to commands", "topic", topic)
	}

	b.started.Store(true)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.Run(ctx)
	}()

	b.health.Start(ctx)

	b.logInfo("bridge started",
		"gateway_id", b.opts.GatewayID,
		"node_topic", b.opts.NodeTopic,
		"publish_mode", b.store.Get().String())
	return nil
}

// Stop gracefully shuts down the bridge.
// Safe to call multiple times.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.wg.Wait()

		// Stop health reporting (publishes "stopping" status)
		b.health.Stop()

		b.logInfo("bridge stopped")
	})
}

// Run is the control loop. Every poll interval it executes queued
// commands, samples the button and processes available serial input.
// It returns when ctx is cancelled or Stop is called.
func (b *Bridge) Run(ctx context.Context) {
	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case now := <-ticker.C:
			b.poll(ctx, now)
		}
	}
}

// poll runs one control loop iteration.
func (b *Bridge) poll(ctx context.Context, now time.Time) {
	b.drainCommands(ctx)
	b.pollButton(ctx, now)
	b.pollSerial()
}

// drainCommands executes every command queued so far.
func (b *Bridge) drainCommands(ctx context.Context) {
	for {
		select {
		case cmd := <-b.commands:
			b.execute(ctx, cmd)
		default:
			return
		}
	}
}

// execute runs one command on the control loop.
func (b *Bridge) execute(ctx context.Context, cmd Command) {
	var err error
	switch cmd.Kind {
	case CommandSend:
		err = b.dispatcher.Forward(cmd.Text)
	case CommandSetMode:
		_, err = b.dispatcher.SetMode(ctx, cmd.Mode)
	case CommandReset:
		err = b.dispatcher.Reset(ctx)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownCommand, int(cmd.Kind))
	}

	if err != nil {
		b.logError("command failed", err, "command", cmd.Kind.String())
	}
	cmd.reply(err)
}

// pollButton samples the button and reacts to debounced events.
func (b *Bridge) pollButton(ctx context.Context, now time.Time) {
	if b.button == nil {
		return
	}

	pressed, err := b.button.Pressed()
	if err != nil {
		if !b.buttonFailing {
			b.logError("failed to read button", err)
			b.buttonFailing = true
		}
		return
	}
	b.buttonFailing = false

	switch b.debouncer.Update(pressed, now) {
	case ButtonPress:
		if err := b.dispatcher.ButtonPressed(); err != nil {
			b.logError("failed to publish button press", err)
		}
	case ButtonLongPress:
		b.logInfo("button held, resetting configuration")
		if err := b.dispatcher.Reset(ctx); err != nil {
			b.logError("configuration reset failed", err)
		}
	case ButtonNone:
	}
}

// pollSerial processes whatever the receiver has sent since the last poll.
func (b *Bridge) pollSerial() {
	chunk, err := b.serial.ReadAvailable()
	if err != nil {
		// Log the first failure of a run only; the loop polls every few ms.
		if !b.serialFailing.Swap(true) {
			b.logError("serial read failed", err)
		}
		return
	}
	if b.serialFailing.Swap(false) {
		b.logInfo("serial read recovered")
	}
	if len(chunk) == 0 {
		return
	}
	b.dispatcher.ProcessChunk(chunk)
}

// handleMQTTMessage queues commands received on the node's set topics.
func (b *Bridge) handleMQTTMessage(topic string, payload []byte) {
	var cmd Command
	switch topic {
	case b.commandTopic(PropertyToSend):
		cmd = SendCommand(string(payload))
	case b.commandTopic(PropertyPublishMode), b.commandTopic(PropertyMode):
		cmd = SetModeCommand(DecodeMode(string(payload)))
	default:
		b.logDebug("ignoring message", "topic", topic)
		return
	}

	if err := b.Submit(cmd); err != nil {
		b.logError("failed to queue command", err, "topic", topic)
	}
}

// Submit queues a command without waiting for it to run.
//
// Returns:
//   - error: ErrQueueFull if the queue is full, ErrBridgeStopped after Stop
func (b *Bridge) Submit(cmd Command) error {
	select {
	case <-b.done:
		return ErrBridgeStopped
	default:
	}

	select {
	case b.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Execute queues a command and waits for the control loop to run it.
//
// Returns:
//   - error: The command's own error, a queueing error, ctx.Err(), or
//     ErrBridgeStopped if the bridge stops first
func (b *Bridge) Execute(ctx context.Context, cmd Command) error {
	cmd.done = make(chan error, 1)
	if err := b.Submit(cmd); err != nil {
		return err
	}

	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrBridgeStopped
	}
}

// Mode returns the active publish mode.
func (b *Bridge) Mode() PublishMode {
	return b.store.Get()
}

// Stats returns the bridge counters.
func (b *Bridge) Stats() StatsSnapshot {
	return b.stats.Snapshot()
}

// State returns the dispatcher's current processing stage.
func (b *Bridge) State() State {
	return b.dispatcher.State()
}

// Running reports whether the control loop was started and not stopped.
func (b *Bridge) Running() bool {
	if !b.started.Load() {
		return false
	}
	select {
	case <-b.done:
		return false
	default:
		return true
	}
}

// SerialHealthy reports whether the last serial read succeeded.
func (b *Bridge) SerialHealthy() bool {
	return !b.serialFailing.Load()
}

// MQTTConnected reports the broker connection state.
func (b *Bridge) MQTTConnected() bool {
	return b.mqtt.IsConnected()
}

// commandTopic returns the full set topic of a node property.
func (b *Bridge) commandTopic(property string) string {
	return b.opts.NodeTopic + "/" + property + setSuffix
}

// SetLogger sets the logger for the bridge and its components.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
	b.dispatcher.SetLogger(logger)
	b.health.SetLogger(logger)
}

func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

func (b *Bridge) logDebug(msg string, args ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Debug(msg, args...)
	}
}

func (b *Bridge) logInfo(msg string, args ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Info(msg, args...)
	}
}

func (b *Bridge) logError(msg string, err error, args ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Error(msg, append([]any{"error", err}, args...)...)
	}
}

// nodePublisher prefixes node-relative topics and applies the bridge QoS.
type nodePublisher struct {
	client MQTTClient
	node   string
}

// Publish implements Publisher.
func (p *nodePublisher) Publish(topic string, payload []byte, retained bool) error {
	return p.client.Publish(p.node+"/"+topic, payload, commandQoS, retained)
}
