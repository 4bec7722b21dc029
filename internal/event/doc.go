// Package event provides a pub-sub event bus for decoupled inter-component
// communication in the agent manager.
//
// This package enables loose coupling between the TUI, the orchestrator,
// and the dispatcher by allowing them to communicate through events rather
// than direct method calls. Components can publish events without knowing
// who will receive them, and subscribe to events without knowing who will
// produce them.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// The package defines several categories of events:
//
// Project Lifecycle:
//   - [ProjectCreatedEvent]: Emitted when a new project is initialized
//   - [IntentHandledEvent]: Emitted after an intent is applied to project state
//   - [PhaseChangedEvent]: Emitted when the project phase changes
//
// Task Events:
//   - [TaskDispatchedEvent]: Emitted when an agent task is handed to a backend
//   - [TaskCompletedEvent]: Emitted when an agent task reaches a terminal status
//
// Planning Events:
//   - [PlanProposedEvent]: Emitted when the planner produces a reviewable plan
//   - [ClarificationRequestedEvent]: Emitted when the planner asks questions
//
// Approval Events:
//   - [ApprovalRequestedEvent]: Emitted when the state machine blocks on a gate
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Multiple goroutines can publish
// and subscribe concurrently. Handlers are called synchronously and protected
// against panics - a panicking handler will not prevent other handlers from
// being called.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	// Subscribe to specific event types
//	bus.Subscribe("approval.requested", func(e event.Event) {
//	    req := e.(event.ApprovalRequestedEvent)
//	    log.Printf("Approval %s pending", req.ApprovalID)
//	})
//
//	// Subscribe to all events (useful for logging)
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("Event: %s at %v", e.EventType(), e.Timestamp())
//	})
//
//	// Publish events
//	bus.Publish(event.NewTaskDispatchedEvent("proj-1", "task-1", "planning", "initial"))
//
//	// Unsubscribe when done
//	id := bus.Subscribe("plan.proposed", handler)
//	bus.Unsubscribe(id)
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - project.created, intent.handled, phase.changed
//   - task.dispatched, task.completed
//   - plan.proposed, clarification.requested
//   - approval.requested
package event
