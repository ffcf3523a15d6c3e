// Package database provides SQLite connectivity for the bridge's local state.
//
// The bridge keeps very little state (currently the persisted publish
// mode), but it lives in SQLite so that it survives restarts atomically
// and can grow without a new storage format.
//
// This package manages:
//   - Database connection with WAL mode and a busy timeout
//   - Forward-only schema migrations embedded in the binary
//   - Lifecycle management and health checks
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql.
package database
