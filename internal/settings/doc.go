// Package settings provides the persistent cells that hold the bridge's
// publish mode between restarts.
//
// Three backends satisfy rflink.ModeCell:
//
//   - SQLiteCell: a row in the "settings" table of the bridge database
//   - FileCell: a checksummed main+backup file pair (extremofile), suited
//     to SD-card gateways without a database
//   - MemoryCell: process memory only, for tests and throwaway runs
//
// The mode is stored as its numeric code ("1", "2" or "3"). A cell never
// validates the value beyond parsing it; rflink.ModeStore replaces a
// missing or invalid record with STANDARD.
//
// Usage:
//
//	cell := settings.NewSQLiteCell(db.DB)
//	store := rflink.NewModeStore(cell)
//	if err := store.Load(ctx); err != nil {
//	    return err
//	}
package settings
