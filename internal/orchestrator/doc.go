// Package orchestrator is the single writer of canonical project
// state. It loads state from the store, serializes intent handling,
// computes transitions through the machine package, persists the
// successor state before any side effect runs, and hands the effect
// list to the dispatcher. Agent completions re-enter through Submit as
// agent_result intents, so there is exactly one mutation path.
package orchestrator
