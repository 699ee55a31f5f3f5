// Package stores provides persistent storage for resilix.
//
// The only store today is SQLite-backed execution history: every completed
// run (success or failure, real or dry) is recorded so that `resilix
// history` can show what was attempted, through which tier, and how it
// went. The schema is managed with embedded golang-migrate migrations.
package stores
