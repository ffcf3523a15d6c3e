package rflink

import (
	"context"
	"fmt"
	"sync"
)

// ModeCell persists the publish mode.
// Implementations live in internal/settings (SQLite, file, memory).
type ModeCell interface {
	// Load returns the stored mode. ok is false when nothing was stored yet.
	// A stored but invalid value is returned as is; the store replaces it.
	Load(ctx context.Context) (mode PublishMode, ok bool, err error)

	// Store persists mode synchronously.
	Store(ctx context.Context, mode PublishMode) error
}

// ModeStore holds the active publish mode and keeps it in sync with its
// cell. The cell is always written before the in-memory value changes, so
// after a failed write memory still matches what is persisted.
//
// Thread Safety: All methods are safe for concurrent use. Writes are
// expected from the bridge control loop only.
type ModeStore struct {
	cell ModeCell
	mode PublishMode
	mu   sync.RWMutex
}

// NewModeStore creates a store that starts in STANDARD mode.
// Call Load to read the persisted value.
func NewModeStore(cell ModeCell) *ModeStore {
	return &ModeStore{
		cell: cell,
		mode: ModeStandard,
	}
}

// Load reads the persisted mode. A missing or invalid record is replaced by
// STANDARD, which is written back to the cell.
func (s *ModeStore) Load(ctx context.Context) error {
	mode, ok, err := s.cell.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrModeLoad, err)
	}

	if !ok || !mode.Valid() {
		mode = ModeStandard
		if err := s.cell.Store(ctx, mode); err != nil {
			return fmt.Errorf("%w: %w", ErrModePersist, err)
		}
	}

	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	return nil
}

// Get returns the active mode.
func (s *ModeStore) Get() PublishMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Set changes the active mode.
//
// Setting the current mode is a no-op and does not touch the cell.
//
// Returns:
//   - PublishMode: The mode before the call
//   - error: ErrInvalidMode, or ErrModePersist wrapping the cell error
func (s *ModeStore) Set(ctx context.Context, mode PublishMode) (PublishMode, error) {
	if !mode.Valid() {
		return s.Get(), fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.mode
	if previous == mode {
		return previous, nil
	}
	if err := s.cell.Store(ctx, mode); err != nil {
		return previous, fmt.Errorf("%w: %w", ErrModePersist, err)
	}
	s.mode = mode
	return previous, nil
}

// Reset forces STANDARD and persists it even if it is already active.
func (s *ModeStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cell.Store(ctx, ModeStandard); err != nil {
		return fmt.Errorf("%w: %w", ErrModePersist, err)
	}
	s.mode = ModeStandard
	return nil
}
