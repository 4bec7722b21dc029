// Package plan turns raw planner output into a validated planning
// outcome: either a single clarifying question or a structured plan
// draft.
//
// Planner models wrap JSON in prose, markdown fences, or both. [Parse]
// extracts the first JSON object it can find (direct parse, fenced block,
// then first-brace-to-last-brace), validates it strictly, and returns an
// [Output] holding exactly one of Questions or Draft. [Normalize] then
// converts an accepted draft into an immutable, content-addressed
// [project.PlanSnapshot], tolerating shape drift by filling untitled
// entries and positional ids.
//
// Parsing is strict so a malformed response can trigger the single
// retry with a stricter prompt; normalization is tolerant so an accepted
// payload can never corrupt state.
package plan
