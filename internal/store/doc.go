// Package store persists the orchestrator's project state as a single
// JSON document on disk.
//
// The whole State is written as one file (project.json) inside the
// state directory using a write-through-rename, so readers never
// observe a partially written document. A gofrs/flock advisory lock on
// a sibling lock file enforces one orchestrating process per state
// directory; read-only observers such as the dashboard and the status
// command do not take the lock and only ever see committed snapshots.
package store
