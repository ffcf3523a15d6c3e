package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/bridges/rflink"
)

// PublishModeKey is the settings row holding the publish mode.
const PublishModeKey = "publish_mode"

// SQLiteCell stores the mode in the settings table.
// The table is created by the embedded migrations.
type SQLiteCell struct {
	db  *sql.DB
	key string
	now func() time.Time
}

// NewSQLiteCell creates a cell on an open, migrated database.
func NewSQLiteCell(db *sql.DB) *SQLiteCell {
	return &SQLiteCell{db: db, key: PublishModeKey, now: time.Now}
}

// Load implements rflink.ModeCell.
// An unparsable value is reported as stored with mode 0, so the mode store
// replaces it.
func (c *SQLiteCell) Load(ctx context.Context) (rflink.PublishMode, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, c.key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s: %w", ErrReadFailed, c.key, err)
	}

	mode, err := rflink.ParseModeCode(value)
	if err != nil {
		return 0, true, nil
	}
	return mode, true, nil
}

// Store implements rflink.ModeCell.
func (c *SQLiteCell) Store(ctx context.Context, mode rflink.PublishMode) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		c.key, mode.Code(), c.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, c.key, err)
	}
	return nil
}
