// Package prompt decides which conversation to have with the planner and
// renders it.
//
// [Evaluate] computes readiness: whether the project's goal, ICP, tech
// stack, constraints, and core features are all covered by structured
// context or by answered clarifications (matched by case-insensitive
// keywords). A ready project gets the final planning prompt; an unready
// one gets the clarification prompt, which permits at most one question
// per turn. A planning task in the final stage forces readiness.
//
// [Renderer] assembles the prompt text from built-in templates in one of
// two modes (conversation or checklist) or from user overrides placed in
// the configured template directory. Overrides use $variable substitution
// ($goal, $stage, $note, $context, $clarifications); values are not
// escaped before substitution.
package prompt
