// Package machine implements the project lifecycle as a pure transition
// function.
//
// [Transit] takes the current state (nil only for project creation), one
// [Intent], and an injectable clock value, and returns an [Outcome]
// holding the successor state and the side effects the caller must
// execute. Failure modes are encoded as phase changes plus discussion
// entries rather than errors, so every intent produces a usable outcome.
//
// # Outcome classes
//
// An intent lands in one of three classes:
//
//   - applied: the state advanced; version incremented and a history
//     record appended.
//   - rejected: a precondition failed but must not poison state (for
//     example run_tasks while an execution approval is pending). The
//     phase is preserved, the version still increments, and a system
//     discussion entry explains why.
//   - no-op: the state is returned unchanged, version included. Only two
//     intents can land here: retry_tasks selecting zero failed tasks,
//     and an agent_result for a task already terminal with the same
//     status.
//
// # Purity
//
// Transit deep-copies the input state before touching it and never
// performs I/O, so it is safe to call from tests with shared fixtures
// and safe for the façade to discard the result when persistence fails.
package machine
