package settings

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/temoto/extremofile"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/bridges/rflink"
)

// File cell constants.
const (
	fileCellPrefix   = "publish-mode."
	fileCellDirPerm  = os.FileMode(0o750)
	fileCellFilePerm = os.FileMode(0o600)
)

// storage is the part of extremofile used by FileCell.
type storage interface {
	Read() ([]byte, error)
	Write(b []byte) (int, error)
}

// Logger is the interface for structured logging.
// This is satisfied by *logging.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// FileCell stores the mode in a checksummed main+backup file pair.
// Records always have the same length, which extremofile relies on since it
// rewrites files in place.
// A corrupt main file is recovered from the backup; if both are corrupt the
// cell reports no record and the mode store writes a fresh one.
type FileCell struct {
	storage storage
	logger  Logger
}

// NewFileCell creates a cell in dir. No IO happens until Load or Store.
func NewFileCell(dir string) *FileCell {
	return &FileCell{
		storage: extremofile.New(extremofile.Config{
			Dir:        dir,
			FilePrefix: fileCellPrefix,
			DirPerm:    fileCellDirPerm,
			FilePerm:   fileCellFilePerm,
		}),
	}
}

// SetLogger sets the logger used for recoverable storage issues.
func (c *FileCell) SetLogger(logger Logger) {
	c.logger = logger
}

// Load implements rflink.ModeCell.
func (c *FileCell) Load(_ context.Context) (rflink.PublishMode, bool, error) {
	data, err := c.storage.Read()
	switch {
	case err == nil:
	case extremofile.IsCritical(err) && extremofile.IsCorrupt(err):
		c.warn("publish mode file corrupt, resetting", err)
		return 0, false, nil
	case extremofile.IsCritical(err):
		return 0, false, fmt.Errorf("%w: %w", ErrReadFailed, err)
	default:
		// The main copy was unreadable and data came from the backup.
		c.warn("publish mode read from backup", err)
	}
	if data == nil {
		return 0, false, nil
	}

	mode, err := rflink.ParseModeCode(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, true, nil
	}
	return mode, true, nil
}

// Store implements rflink.ModeCell.
// A failed backup write is only logged; the main copy is in place.
func (c *FileCell) Store(_ context.Context, mode rflink.PublishMode) error {
	_, err := c.storage.Write([]byte(mode.Code()))
	if err == nil {
		return nil
	}
	if extremofile.IsCritical(err) {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	c.warn("publish mode backup write failed", err)
	return nil
}

func (c *FileCell) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, "error", err)
	}
}
