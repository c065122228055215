// Package journal persists conversion outcomes in SQLite so operators can
// audit what was converted, when, and why runs were skipped.
//
// The Store manages database connections, schema initialization, and the
// per-session and per-run records the orchestrator writes as it works. The
// database is an append-only audit trail, not coordination state; nothing in
// the pipeline reads it back except the reporting queries.
//
// Schema changes bump the version in schema.go; users delete the database to
// adopt the new schema.
package journal
