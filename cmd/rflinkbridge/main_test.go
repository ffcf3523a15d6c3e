package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/bridges/rflink"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/config"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/logging"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/settings"
)

// writeConfig writes a config file and points RFLINK_CONFIG at it.
func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("RFLINK_CONFIG", path)
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("RFLINK_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("run() error = %v, want loading config error", err)
	}
}

// TestRun_ValidationError verifies invalid values are rejected before
// anything is opened.
func TestRun_ValidationError(t *testing.T) {
	writeConfig(t, `
mode_store:
  backend: redis
logging:
  level: error
`)

	err := run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "mode_store.backend") {
		t.Errorf("run() error = %v, want mode_store.backend validation error", err)
	}
}

// TestRun_MissingSerialDevice verifies run fails when the receiver is absent.
func TestRun_MissingSerialDevice(t *testing.T) {
	writeConfig(t, `
serial:
  device: /dev/nonexistent-rflink
mode_store:
  backend: memory
logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "opening serial port") {
		t.Errorf("run() error = %v, want serial port error", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("RFLINK_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("RFLINK_CONFIG", "/etc/rflink/config.yaml")
	if got := getConfigPath(); got != "/etc/rflink/config.yaml" {
		t.Errorf("getConfigPath() = %q, want /etc/rflink/config.yaml", got)
	}
}

func TestOpenModeCell(t *testing.T) {
	tests := []struct {
		backend string
		wantDB  bool
	}{
		{config.ModeStoreSQLite, true},
		{config.ModeStoreFile, false},
		{config.ModeStoreMemory, false},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := &config.Config{
				ModeStore: config.ModeStoreConfig{Backend: tt.backend, FileDir: filepath.Join(dir, "mode")},
				Database:  config.DatabaseConfig{Path: filepath.Join(dir, "rflink.db"), WALMode: true, BusyTimeout: 5},
			}

			ctx := context.Background()
			cell, db, err := openModeCell(ctx, cfg, testLogger())
			if err != nil {
				t.Fatalf("openModeCell() error = %v", err)
			}
			if db != nil {
				defer db.Close()
			}
			if (db != nil) != tt.wantDB {
				t.Errorf("db = %v, want db opened = %v", db, tt.wantDB)
			}

			// A fresh store has no record; a stored mode reads back.
			if _, found, err := cell.Load(ctx); err != nil || found {
				t.Fatalf("Load() on fresh store = found %v, err %v", found, err)
			}
			if err := cell.Store(ctx, rflink.ModeJSON); err != nil {
				t.Fatalf("Store() error = %v", err)
			}
			mode, found, err := cell.Load(ctx)
			if err != nil || !found || mode != rflink.ModeJSON {
				t.Errorf("Load() = %v, %v, %v, want JSON, true, nil", mode, found, err)
			}
		})
	}
}

func TestOpenModeCell_Types(t *testing.T) {
	cfg := &config.Config{ModeStore: config.ModeStoreConfig{Backend: config.ModeStoreMemory}}
	cell, _, err := openModeCell(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("openModeCell() error = %v", err)
	}
	if _, ok := cell.(*settings.MemoryCell); !ok {
		t.Errorf("cell = %T, want *settings.MemoryCell", cell)
	}
}

func TestOpenModeCell_UnknownBackend(t *testing.T) {
	cfg := &config.Config{ModeStore: config.ModeStoreConfig{Backend: "etcd"}}
	if _, _, err := openModeCell(context.Background(), cfg, testLogger()); err == nil {
		t.Error("openModeCell() with unknown backend should fail")
	}
}

func TestOpenModeCell_BadDatabasePath(t *testing.T) {
	// The database directory's parent is a regular file.
	blocker := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		ModeStore: config.ModeStoreConfig{Backend: config.ModeStoreSQLite},
		Database:  config.DatabaseConfig{Path: filepath.Join(blocker, "rflink.db")},
	}
	if _, _, err := openModeCell(context.Background(), cfg, testLogger()); err == nil {
		t.Error("openModeCell() with database path under a file should fail")
	}
}

// TestMQTTBridgeAdapter_Interface ensures the adapter satisfies the bridge's
// client interface.
func TestMQTTBridgeAdapter_Interface(_ *testing.T) {
	var _ rflink.MQTTClient = (*mqttBridgeAdapter)(nil)
}
