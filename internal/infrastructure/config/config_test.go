package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
gateway:
  id: "attic-gateway"
serial:
  device: "/dev/ttyACM0"
  baud_rate: 57600
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
mode_store:
  backend: "file"
  file_dir: "/tmp/rflink"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gateway.ID != "attic-gateway" {
		t.Errorf("Gateway.ID = %q, want %q", cfg.Gateway.ID, "attic-gateway")
	}
	if cfg.Serial.Device != "/dev/ttyACM0" {
		t.Errorf("Serial.Device = %q, want %q", cfg.Serial.Device, "/dev/ttyACM0")
	}
	if cfg.ModeStore.Backend != ModeStoreFile {
		t.Errorf("ModeStore.Backend = %q, want %q", cfg.ModeStore.Backend, ModeStoreFile)
	}

	// Untouched sections keep their defaults.
	if cfg.Gateway.Node != "serial01" {
		t.Errorf("Gateway.Node = %q, want default %q", cfg.Gateway.Node, "serial01")
	}
	if cfg.Serial.ReadChunkSize != 256 {
		t.Errorf("Serial.ReadChunkSize = %d, want default 256", cfg.Serial.ReadChunkSize)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
gateway:
  id: ""
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error for empty gateway.id, got nil")
	}
	if !strings.Contains(err.Error(), "gateway.id") {
		t.Errorf("Load() error = %v, want mention of gateway.id", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "missing gateway ID", mutate: func(c *Config) { c.Gateway.ID = "" }, wantErr: true},
		{name: "wildcard in node", mutate: func(c *Config) { c.Gateway.Node = "serial/+" }, wantErr: true},
		{name: "missing serial device", mutate: func(c *Config) { c.Serial.Device = "" }, wantErr: true},
		{name: "zero baud rate", mutate: func(c *Config) { c.Serial.BaudRate = 0 }, wantErr: true},
		{name: "zero chunk size", mutate: func(c *Config) { c.Serial.ReadChunkSize = 0 }, wantErr: true},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{name: "zero payload limit", mutate: func(c *Config) { c.MQTT.MaxPayloadSize = 0 }, wantErr: true},
		{name: "unknown mode backend", mutate: func(c *Config) { c.ModeStore.Backend = "eeprom" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{
			name: "memory backend ignores database path",
			mutate: func(c *Config) {
				c.ModeStore.Backend = ModeStoreMemory
				c.Database.Path = ""
			},
		},
		{
			name: "file backend without dir",
			mutate: func(c *Config) {
				c.ModeStore.Backend = ModeStoreFile
				c.ModeStore.FileDir = ""
			},
			wantErr: true,
		},
		{
			name: "enabled button without debounce",
			mutate: func(c *Config) {
				c.Button.Enabled = true
				c.Button.DebounceMS = 0
			},
			wantErr: true,
		},
		{
			name: "enabled influx without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = ""
			},
			wantErr: true,
		},
		{
			name: "disabled api ignores port",
			mutate: func(c *Config) {
				c.API.Enabled = false
				c.API.Port = 0
			},
		},
		{
			name: "enabled api with invalid port",
			mutate: func(c *Config) {
				c.API.Enabled = true
				c.API.Port = 70000
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := &Config{
		Serial: SerialConfig{PollInterval: 20},
		Button: ButtonConfig{DebounceMS: 50, ResetHoldSeconds: 10},
		Health: HealthConfig{IntervalSeconds: 30},
		API: APIConfig{
			Timeouts: APITimeoutConfig{Read: 30, Write: 45, Idle: 60},
		},
	}

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"poll interval", cfg.GetPollInterval(), 20 * time.Millisecond},
		{"debounce", cfg.GetDebounce(), 50 * time.Millisecond},
		{"reset hold", cfg.GetResetHold(), 10 * time.Second},
		{"health interval", cfg.GetHealthInterval(), 30 * time.Second},
		{"read timeout", cfg.GetReadTimeout(), 30 * time.Second},
		{"write timeout", cfg.GetWriteTimeout(), 45 * time.Second},
		{"idle timeout", cfg.GetIdleTimeout(), 60 * time.Second},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("RFLINK_GATEWAY_ID", "garage")
	t.Setenv("RFLINK_SERIAL_DEVICE", "/dev/ttyS1")
	t.Setenv("RFLINK_SERIAL_BAUD_RATE", "115200")
	t.Setenv("RFLINK_MQTT_HOST", "mqtt.example.com")
	t.Setenv("RFLINK_MQTT_USERNAME", "testuser")
	t.Setenv("RFLINK_MQTT_PASSWORD", "testpass")
	t.Setenv("RFLINK_MODE_STORE_BACKEND", "memory")
	t.Setenv("RFLINK_DATABASE_PATH", "/custom/path.db")
	t.Setenv("RFLINK_API_HOST", "192.168.1.1")
	t.Setenv("RFLINK_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	checks := []struct {
		field, got, want string
	}{
		{"Gateway.ID", cfg.Gateway.ID, "garage"},
		{"Serial.Device", cfg.Serial.Device, "/dev/ttyS1"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"ModeStore.Backend", cfg.ModeStore.Backend, "memory"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}

	if cfg.Serial.BaudRate != 115200 {
		t.Errorf("Serial.BaudRate = %d, want 115200", cfg.Serial.BaudRate)
	}
}

func TestApplyEnvOverrides_InvalidBaudIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("RFLINK_SERIAL_BAUD_RATE", "fast")

	applyEnvOverrides(cfg)

	if cfg.Serial.BaudRate != 57600 {
		t.Errorf("Serial.BaudRate = %d, want default 57600", cfg.Serial.BaudRate)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Gateway.ID == "" {
		t.Error("defaultConfig should have non-empty Gateway.ID")
	}
	if cfg.Serial.BaudRate != 57600 {
		t.Errorf("defaultConfig Serial.BaudRate = %d, want 57600", cfg.Serial.BaudRate)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Button.DebounceMS != 50 {
		t.Errorf("defaultConfig Button.DebounceMS = %d, want 50", cfg.Button.DebounceMS)
	}
	if cfg.ModeStore.Backend != ModeStoreSQLite {
		t.Errorf("defaultConfig ModeStore.Backend = %q, want %q", cfg.ModeStore.Backend, ModeStoreSQLite)
	}
}
