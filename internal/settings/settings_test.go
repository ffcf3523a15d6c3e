package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/bridges/rflink"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/config"
	"github.com/piotrC4/mqtt-rflink-bridge/internal/infrastructure/database"
	"github.com/piotrC4/mqtt-rflink-bridge/migrations"
)

// Compile-time interface checks.
var (
	_ rflink.ModeCell = (*MemoryCell)(nil)
	_ rflink.ModeCell = (*SQLiteCell)(nil)
	_ rflink.ModeCell = (*FileCell)(nil)
)

// openTestDB opens a migrated in-memory database.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Path: ":memory:", BusyTimeout: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

// cellRoundTrip checks the behaviour every cell shares.
func cellRoundTrip(t *testing.T, cell rflink.ModeCell) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := cell.Load(ctx); err != nil || ok {
		t.Fatalf("Load() on empty cell = ok %v, err %v; want no record", ok, err)
	}

	for _, mode := range []rflink.PublishMode{rflink.ModeJSON, rflink.ModeRaw, rflink.ModeStandard} {
		if err := cell.Store(ctx, mode); err != nil {
			t.Fatalf("Store(%v) error = %v", mode, err)
		}
		got, ok, err := cell.Load(ctx)
		if err != nil || !ok || got != mode {
			t.Errorf("Load() = %v, %v, %v; want %v", got, ok, err, mode)
		}
	}
}

func TestMemoryCell(t *testing.T) {
	cellRoundTrip(t, NewMemoryCell())
}

func TestSQLiteCell(t *testing.T) {
	cellRoundTrip(t, NewSQLiteCell(openTestDB(t).DB))
}

func TestSQLiteCell_InvalidValue(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, 'garbage', '2026-03-01T00:00:00Z')`,
		PublishModeKey)
	if err != nil {
		t.Fatal(err)
	}

	mode, ok, err := NewSQLiteCell(db.DB).Load(ctx)
	if err != nil || !ok || mode.Valid() {
		t.Errorf("Load() = %v, %v, %v; want stored invalid mode", mode, ok, err)
	}

	// The mode store replaces it with STANDARD.
	store := rflink.NewModeStore(NewSQLiteCell(db.DB))
	if err := store.Load(ctx); err != nil {
		t.Fatalf("ModeStore.Load() error = %v", err)
	}
	var value string
	if err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, PublishModeKey).Scan(&value); err != nil {
		t.Fatal(err)
	}
	if value != "1" {
		t.Errorf("stored value = %q, want 1", value)
	}
}

func TestSQLiteCell_ClosedDB(t *testing.T) {
	db := openTestDB(t)
	cell := NewSQLiteCell(db.DB)
	db.Close() //nolint:errcheck // Closing early on purpose

	if _, _, err := cell.Load(context.Background()); !errors.Is(err, ErrReadFailed) {
		t.Errorf("Load() error = %v, want ErrReadFailed", err)
	}
	if err := cell.Store(context.Background(), rflink.ModeRaw); !errors.Is(err, ErrWriteFailed) {
		t.Errorf("Store() error = %v, want ErrWriteFailed", err)
	}
}

func TestFileCell(t *testing.T) {
	cellRoundTrip(t, NewFileCell(t.TempDir()))
}

func TestFileCell_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	if err := NewFileCell(dir).Store(ctx, rflink.ModeRaw); err != nil {
		t.Fatal(err)
	}

	mode, ok, err := NewFileCell(dir).Load(ctx)
	if err != nil || !ok || mode != rflink.ModeRaw {
		t.Errorf("Load() = %v, %v, %v; want RAW", mode, ok, err)
	}
}

func TestFileCell_RecoversFromBackup(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	if err := NewFileCell(dir).Store(ctx, rflink.ModeJSON); err != nil {
		t.Fatal(err)
	}
	corrupt(t, filepath.Join(dir, fileCellPrefix+"v1.main"))

	mode, ok, err := NewFileCell(dir).Load(ctx)
	if err != nil || !ok || mode != rflink.ModeJSON {
		t.Errorf("Load() = %v, %v, %v; want JSON from backup", mode, ok, err)
	}
}

func TestFileCell_BothCopiesCorrupt(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	if err := NewFileCell(dir).Store(ctx, rflink.ModeJSON); err != nil {
		t.Fatal(err)
	}
	corrupt(t, filepath.Join(dir, fileCellPrefix+"v1.main"))
	corrupt(t, filepath.Join(dir, fileCellPrefix+"v1.backup"))

	_, ok, err := NewFileCell(dir).Load(ctx)
	if err != nil || ok {
		t.Errorf("Load() = ok %v, err %v; want no record", ok, err)
	}
}

// corrupt flips the first byte of a file.
func corrupt(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[0] ^= 0xff
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
}
