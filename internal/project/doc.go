// Package project defines the canonical data model for an orchestrated
// project: the root [State] aggregate, its phases, agent tasks,
// clarifications, plan snapshots, approvals, and the derived execution
// view.
//
// The package is purely descriptive. All lifecycle logic lives in the
// machine package; project only provides the types, deep copying via
// [State.Clone], the derived-view recomputation [State.RecomputeExecution],
// and the identity helpers [StableJSON], [DeterministicID], and
// [NewTaskID].
//
// # Identity
//
// Derived entities (clarifications, plan snapshots, discussion entries,
// approvals) carry deterministic identifiers: the entity kind joined with
// the first 12 hex characters of the SHA-256 of the entity's canonical
// JSON. Two entities with identical content therefore share an identifier,
// which is what makes plan snapshots content-addressed. Agent and
// execution task identifiers are random UUIDs, unique per creation.
//
// # Ownership
//
// One State exists per store. The orchestrator façade owns the canonical
// instance; every other component works on detached copies obtained
// through [State.Clone].
package project
