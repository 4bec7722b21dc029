// Package dispatch executes the side effects produced by the state
// machine. Effects are handed off in list order: agent tasks go to the
// planner or executor runner, approval requests are published for the
// operator surfaces. Runners perform the agent round trip in their own
// goroutines and re-enter the orchestrator solely as agent_result
// intents through the ResultSink.
package dispatch
