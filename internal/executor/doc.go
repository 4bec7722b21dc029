// Package executor provides the execution backends: the wire envelopes
// exchanged with agent processes, a subprocess backend that spawns one
// agent command per task (optionally under a pseudo-terminal), and a
// manual backend for operators who run agents by hand and submit
// results through the result command.
package executor
