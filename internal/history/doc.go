// Package history keeps a SQLite ledger of pipeline runs and the notification
// deliveries each run made.
//
// The ledger is observational: state and knowledge files remain the source of
// truth for change detection, and a missing or unwritable ledger never blocks a
// run. The schema is versioned; a mismatch returns ErrSchemaMismatch and the
// database must be deleted to reset it.
package history
