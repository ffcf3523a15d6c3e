// RFLink MQTT bridge
//
// This is the main entry point of the bridge between an RFLink 433 MHz
// receiver on a serial port and an MQTT broker. Received lines are parsed
// and published under a Homie-style node topic; commands arriving on the
// node's set topics are executed by the bridge's control loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/api"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/bridges/rflink"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/config"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/database"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/gpio"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/influxdb"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/logging"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/mqtt"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/serial"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/settings"
	"github.com/piotrC4/mqtt-rflink-bridge/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting RFLink bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"gateway_id", cfg.Gateway.ID,
		"mode_store", cfg.ModeStore.Backend,
	)

	// Mode store (SQLite database, extremofile or memory)
	cell, db, err := openModeCell(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
	}

	// Serial link to the receiver
	port, err := serial.Open(cfg.Serial)
	if err != nil {
		return fmt.Errorf("opening serial port: %w", err)
	}
	defer func() {
		log.Info("closing serial port")
		if closeErr := port.Close(); closeErr != nil {
			log.Error("error closing serial port", "error", closeErr)
		}
	}()
	log.Info("serial port open", "device", port.Device(), "baud_rate", cfg.Serial.BaudRate)

	// MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT, cfg.Gateway)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
		"node_topic", mqttClient.Topics().Node(),
	)

	// InfluxDB record sink (optional)
	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	// Push button (optional)
	var button *gpio.Button
	if cfg.Button.Enabled {
		button, err = gpio.OpenButton(cfg.Button)
		if err != nil {
			return fmt.Errorf("opening button: %w", err)
		}
		defer func() {
			if closeErr := button.Close(); closeErr != nil {
				log.Error("error closing button", "error", closeErr)
			}
		}()
		log.Info("button enabled", "chip", cfg.Button.Chip, "line", cfg.Button.Line)
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	bridge, err := startBridge(ctx, cfg, bridgeDeps{
		mqtt:   mqttClient,
		serial: port,
		cell:   cell,
		button: button,
		influx: influxClient,
		log:    log,
	})
	if err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer func() {
		log.Info("stopping bridge")
		bridge.Stop()
	}()

	// HTTP API (optional)
	if cfg.API.Enabled {
		server, err := startAPI(ctx, cfg, bridge, db, log)
		if err != nil {
			return fmt.Errorf("starting API: %w", err)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: API, bridge, button, InfluxDB,
	// MQTT, serial port, database.
	return nil
}

// getConfigPath returns the configuration file path.
// Uses RFLINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("RFLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openModeCell opens the configured publish mode backend.
//
// Returns:
//   - rflink.ModeCell: The cell handed to the bridge
//   - *database.DB: The opened database for the sqlite backend, nil otherwise.
//     The caller closes it.
//   - error: If the backend cannot be opened
func openModeCell(ctx context.Context, cfg *config.Config, log *logging.Logger) (rflink.ModeCell, *database.DB, error) {
	switch cfg.ModeStore.Backend {
	case config.ModeStoreSQLite:
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			db.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("database connected", "path", db.Path())
		return settings.NewSQLiteCell(db.DB), db, nil

	case config.ModeStoreFile:
		cell := settings.NewFileCell(cfg.ModeStore.FileDir)
		cell.SetLogger(log)
		log.Info("file mode store", "dir", cfg.ModeStore.FileDir)
		return cell, nil, nil

	case config.ModeStoreMemory:
		log.Warn("memory mode store, publish mode is not persisted")
		return settings.NewMemoryCell(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown mode store backend %q", cfg.ModeStore.Backend)
	}
}

// healthCheck verifies the infrastructure connections before the bridge starts.
// db and influxClient may be nil.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// bridgeDeps collects the opened components the bridge is built from.
// button and influx are nil when disabled.
type bridgeDeps struct {
	mqtt   *mqtt.Client
	serial *serial.Port
	cell   rflink.ModeCell
	button *gpio.Button
	influx *influxdb.Client
	log    *logging.Logger
}

// startBridge builds and starts the RFLink bridge.
func startBridge(ctx context.Context, cfg *config.Config, deps bridgeDeps) (*rflink.Bridge, error) {
	topics := deps.mqtt.Topics()

	opts := rflink.BridgeOptions{
		GatewayID:      cfg.Gateway.ID,
		Version:        version,
		NodeTopic:      topics.Node(),
		HealthTopic:    topics.Health(),
		PollInterval:   cfg.GetPollInterval(),
		Debounce:       cfg.GetDebounce(),
		ResetHold:      cfg.GetResetHold(),
		HealthInterval: cfg.GetHealthInterval(),
		MQTTClient:     &mqttBridgeAdapter{client: deps.mqtt},
		Serial:         deps.serial,
		ModeCell:       deps.cell,
		Logger:         deps.log,
	}

	// Optional components are only set when present, so the bridge sees a
	// nil interface rather than a typed nil.
	if deps.button != nil {
		opts.Button = deps.button
	}
	if deps.influx != nil {
		opts.RecordSink = deps.influx
		opts.CounterSink = deps.influx
	}

	bridge, err := rflink.NewBridge(opts)
	if err != nil {
		return nil, err
	}
	if err := bridge.Start(ctx); err != nil {
		bridge.Stop()
		return nil, err
	}
	return bridge, nil
}

// startAPI starts the HTTP API server. db may be nil.
func startAPI(ctx context.Context, cfg *config.Config, bridge *rflink.Bridge, db *database.DB, log *logging.Logger) (*api.Server, error) {
	deps := api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Bridge:  bridge,
		Version: version,
	}
	if db != nil {
		deps.DB = db
	}

	server, err := api.New(deps)
	if err != nil {
		return nil, err
	}
	if err := server.Start(ctx); err != nil {
		return nil, err
	}
	return server, nil
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the bridge's
// MQTTClient interface. The difference is the Subscribe handler signature:
//   - Infrastructure mqtt: func(topic, payload []byte) error
//   - rflink bridge expects: func(topic, payload []byte)
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// Publish implements rflink.MQTTClient.
func (a *mqttBridgeAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements rflink.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	return a.client.Subscribe(topic, qos, func(t string, p []byte) error {
		handler(t, p)
		return nil
	})
}

// IsConnected implements rflink.MQTTClient.
func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
