// Package tui renders the read-mostly project dashboard: phase badge,
// task table, pending approvals, open clarifications, and the
// discussion timeline. Rendering reads committed state snapshots; the
// few mutations the dashboard offers (approve, pause, answer) go
// through the orchestrator like any other intent.
package tui
