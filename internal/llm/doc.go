// Package llm provides the planner backends: thin completion clients
// over the Anthropic, OpenAI, and Gemini APIs plus a subprocess backend
// for local agent CLIs. Backends take a rendered prompt and return the
// raw completion text; parsing the completion into questions or a plan
// is the plan package's job.
package llm
