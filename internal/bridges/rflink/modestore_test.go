package rflink

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// mockCell implements ModeCell for testing.
type mockCell struct {
	mu       sync.Mutex
	mode     PublishMode
	stored   bool
	loadErr  error
	storeErr error
	writes   []PublishMode
}

func newMockCell() *mockCell {
	return &mockCell{}
}

func newMockCellWith(mode PublishMode) *mockCell {
	return &mockCell{mode: mode, stored: true}
}

func (c *mockCell) Load(_ context.Context) (PublishMode, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadErr != nil {
		return 0, false, c.loadErr
	}
	return c.mode, c.stored, nil
}

func (c *mockCell) Store(_ context.Context, mode PublishMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.storeErr != nil {
		return c.storeErr
	}
	c.mode = mode
	c.stored = true
	c.writes = append(c.writes, mode)
	return nil
}

func (c *mockCell) setStoreErr(err error) {
	c.mu.Lock()
	c.storeErr = err
	c.mu.Unlock()
}

func (c *mockCell) getWrites() []PublishMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]PublishMode, len(c.writes))
	copy(result, c.writes)
	return result
}

func (c *mockCell) current() PublishMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func TestModeStore_LoadPersisted(t *testing.T) {
	cell := newMockCellWith(ModeJSON)
	store := NewModeStore(cell)

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if store.Get() != ModeJSON {
		t.Errorf("Get() = %v, want JSON", store.Get())
	}
	if len(cell.getWrites()) != 0 {
		t.Errorf("valid record rewritten: %v", cell.getWrites())
	}
}

func TestModeStore_LoadMissingWritesDefault(t *testing.T) {
	cell := newMockCell()
	store := NewModeStore(cell)

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if store.Get() != ModeStandard {
		t.Errorf("Get() = %v, want STANDARD", store.Get())
	}
	if w := cell.getWrites(); len(w) != 1 || w[0] != ModeStandard {
		t.Errorf("writes = %v, want [STANDARD]", w)
	}
}

func TestModeStore_LoadInvalidWritesDefault(t *testing.T) {
	cell := newMockCellWith(PublishMode(77))
	store := NewModeStore(cell)

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if store.Get() != ModeStandard || cell.current() != ModeStandard {
		t.Errorf("Get() = %v, cell = %v; want STANDARD for both", store.Get(), cell.current())
	}
}

func TestModeStore_LoadErrors(t *testing.T) {
	cell := newMockCell()
	cell.loadErr = errors.New("disk gone")
	if err := NewModeStore(cell).Load(context.Background()); !errors.Is(err, ErrModeLoad) {
		t.Errorf("Load() error = %v, want ErrModeLoad", err)
	}

	cell = newMockCell()
	cell.setStoreErr(errors.New("read-only"))
	if err := NewModeStore(cell).Load(context.Background()); !errors.Is(err, ErrModePersist) {
		t.Errorf("Load() error = %v, want ErrModePersist", err)
	}
}

func TestModeStore_Set(t *testing.T) {
	cell := newMockCellWith(ModeStandard)
	store := NewModeStore(cell)
	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}

	prev, err := store.Set(ctx, ModeRaw)
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if prev != ModeStandard || store.Get() != ModeRaw || cell.current() != ModeRaw {
		t.Errorf("prev = %v, Get() = %v, cell = %v", prev, store.Get(), cell.current())
	}
}

func TestModeStore_SetSameIsNoop(t *testing.T) {
	cell := newMockCellWith(ModeJSON)
	store := NewModeStore(cell)
	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}

	prev, err := store.Set(ctx, ModeJSON)
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if prev != ModeJSON {
		t.Errorf("prev = %v, want JSON", prev)
	}
	if len(cell.getWrites()) != 0 {
		t.Errorf("no-op set persisted: %v", cell.getWrites())
	}
}

func TestModeStore_SetPersistFailureKeepsMemory(t *testing.T) {
	cell := newMockCellWith(ModeStandard)
	store := NewModeStore(cell)
	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}
	cell.setStoreErr(errors.New("flash worn out"))

	_, err := store.Set(ctx, ModeJSON)
	if !errors.Is(err, ErrModePersist) {
		t.Fatalf("Set() error = %v, want ErrModePersist", err)
	}
	if store.Get() != ModeStandard {
		t.Errorf("Get() = %v after failed persist, want STANDARD", store.Get())
	}
}

func TestModeStore_SetInvalid(t *testing.T) {
	store := NewModeStore(newMockCell())
	if _, err := store.Set(context.Background(), PublishMode(0)); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Set(0) error = %v, want ErrInvalidMode", err)
	}
}

func TestModeStore_ResetAlwaysPersists(t *testing.T) {
	cell := newMockCellWith(ModeStandard)
	store := NewModeStore(cell)
	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if w := cell.getWrites(); len(w) != 1 || w[0] != ModeStandard {
		t.Errorf("writes = %v, want one STANDARD write", w)
	}

	if _, err := store.Set(ctx, ModeRaw); err != nil {
		t.Fatal(err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if store.Get() != ModeStandard || cell.current() != ModeStandard {
		t.Errorf("Get() = %v, cell = %v after Reset", store.Get(), cell.current())
	}
}
