package settings

import (
	"context"
	"sync"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/bridges/rflink"
)

// MemoryCell keeps the mode in memory. Nothing survives a restart.
type MemoryCell struct {
	mu     sync.Mutex
	mode   rflink.PublishMode
	stored bool
}

// NewMemoryCell creates an empty cell.
func NewMemoryCell() *MemoryCell {
	return &MemoryCell{}
}

// Load implements rflink.ModeCell.
func (c *MemoryCell) Load(_ context.Context) (rflink.PublishMode, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode, c.stored, nil
}

// Store implements rflink.ModeCell.
func (c *MemoryCell) Store(_ context.Context, mode rflink.PublishMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	c.stored = true
	return nil
}
