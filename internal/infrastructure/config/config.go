package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode store backends.
const (
	ModeStoreSQLite = "sqlite"
	ModeStoreFile   = "file"
	ModeStoreMemory = "memory"
)

// Config is the root configuration structure for the RFLink bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway"`
	Serial    SerialConfig    `yaml:"serial"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	ModeStore ModeStoreConfig `yaml:"mode_store"`
	Database  DatabaseConfig  `yaml:"database"`
	Button    ButtonConfig    `yaml:"button"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	API       APIConfig       `yaml:"api"`
	Health    HealthConfig    `yaml:"health"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GatewayConfig identifies this gateway on the message bus.
//
// Topics are built as {base_topic}/{id}/{node}/{property}, which keeps the
// layout of the original Homie firmware (homie/<device>/serial01/rawmsg).
type GatewayConfig struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	BaseTopic string `yaml:"base_topic"`
	Node      string `yaml:"node"`
}

// SerialConfig contains settings for the RFLink serial link.
type SerialConfig struct {
	Device        string `yaml:"device"`
	BaudRate      int    `yaml:"baud_rate"`
	ReadChunkSize int    `yaml:"read_chunk_size"`
	ReadTimeoutMS int    `yaml:"read_timeout_ms"`
	PollInterval  int    `yaml:"poll_interval_ms"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// MaxPayloadSize bounds outgoing payloads in bytes. Larger publications
	// are rejected and reported on the error topic.
	MaxPayloadSize int `yaml:"max_payload_size"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// ModeStoreConfig selects where the publish mode is persisted.
type ModeStoreConfig struct {
	// Backend is one of "sqlite", "file" or "memory".
	Backend string `yaml:"backend"`

	// FileDir is the directory holding the mode file for the "file" backend.
	FileDir string `yaml:"file_dir"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// ButtonConfig contains settings for the physical push button.
type ButtonConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Chip       string `yaml:"chip"`
	Line       uint32 `yaml:"line"`
	ActiveLow  bool   `yaml:"active_low"`
	DebounceMS int    `yaml:"debounce_ms"`

	// ResetHoldSeconds is how long the button must be held to reset the
	// publish mode to STANDARD. 0 disables the long press.
	ResetHoldSeconds int `yaml:"reset_hold_seconds"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP status API settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// HealthConfig contains settings for periodic health publications.
type HealthConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: RFLINK_SECTION_KEY
// For example: RFLINK_SERIAL_DEVICE, RFLINK_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			ID:        "rflink-gateway",
			Name:      "RFLink MQTT Gateway",
			BaseTopic: "homie",
			Node:      "serial01",
		},
		Serial: SerialConfig{
			Device:        "/dev/ttyUSB0",
			BaudRate:      57600,
			ReadChunkSize: 256,
			ReadTimeoutMS: 10,
			PollInterval:  20,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "rflink-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
			MaxPayloadSize: 1 << 20,
		},
		ModeStore: ModeStoreConfig{
			Backend: ModeStoreSQLite,
			FileDir: "./data",
		},
		Database: DatabaseConfig{
			Path:        "./data/rflink.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Button: ButtonConfig{
			Chip:             "gpiochip0",
			ActiveLow:        true,
			DebounceMS:       50,
			ResetHoldSeconds: 10,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Health: HealthConfig{
			IntervalSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: RFLINK_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Gateway
	if v := os.Getenv("RFLINK_GATEWAY_ID"); v != "" {
		cfg.Gateway.ID = v
	}

	// Serial
	if v := os.Getenv("RFLINK_SERIAL_DEVICE"); v != "" {
		cfg.Serial.Device = v
	}
	if v := os.Getenv("RFLINK_SERIAL_BAUD_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Serial.BaudRate = n
		}
	}

	// MQTT
	if v := os.Getenv("RFLINK_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("RFLINK_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("RFLINK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Mode store / database
	if v := os.Getenv("RFLINK_MODE_STORE_BACKEND"); v != "" {
		cfg.ModeStore.Backend = v
	}
	if v := os.Getenv("RFLINK_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("RFLINK_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("RFLINK_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Gateway validation
	if c.Gateway.ID == "" {
		errs = append(errs, "gateway.id is required")
	}
	if strings.ContainsAny(c.Gateway.ID+c.Gateway.BaseTopic+c.Gateway.Node, "+#") {
		errs = append(errs, "gateway topics must not contain MQTT wildcards")
	}
	if c.Gateway.Node == "" {
		errs = append(errs, "gateway.node is required")
	}

	// Serial validation
	if c.Serial.Device == "" {
		errs = append(errs, "serial.device is required")
	}
	if c.Serial.BaudRate <= 0 {
		errs = append(errs, "serial.baud_rate must be positive")
	}
	if c.Serial.ReadChunkSize <= 0 {
		errs = append(errs, "serial.read_chunk_size must be positive")
	}
	if c.Serial.PollInterval <= 0 {
		errs = append(errs, "serial.poll_interval_ms must be positive")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.MaxPayloadSize <= 0 {
		errs = append(errs, "mqtt.max_payload_size must be positive")
	}

	// Mode store validation
	switch c.ModeStore.Backend {
	case ModeStoreSQLite:
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite mode store")
		}
	case ModeStoreFile:
		if c.ModeStore.FileDir == "" {
			errs = append(errs, "mode_store.file_dir is required for the file mode store")
		}
	case ModeStoreMemory:
	default:
		errs = append(errs, fmt.Sprintf("mode_store.backend %q must be sqlite, file, or memory", c.ModeStore.Backend))
	}

	// Button validation
	if c.Button.Enabled {
		if c.Button.Chip == "" {
			errs = append(errs, "button.chip is required when the button is enabled")
		}
		if c.Button.DebounceMS <= 0 {
			errs = append(errs, "button.debounce_ms must be positive")
		}
		if c.Button.ResetHoldSeconds < 0 {
			errs = append(errs, "button.reset_hold_seconds must not be negative")
		}
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetPollInterval returns the serial poll interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Serial.PollInterval) * time.Millisecond
}

// GetDebounce returns the button debounce interval as a Duration.
func (c *Config) GetDebounce() time.Duration {
	return time.Duration(c.Button.DebounceMS) * time.Millisecond
}

// GetResetHold returns the long-press duration that triggers a mode reset.
func (c *Config) GetResetHold() time.Duration {
	return time.Duration(c.Button.ResetHoldSeconds) * time.Second
}

// GetHealthInterval returns the health publication interval as a Duration.
func (c *Config) GetHealthInterval() time.Duration {
	return time.Duration(c.Health.IntervalSeconds) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
