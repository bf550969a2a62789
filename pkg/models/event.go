package models

import "time"

// Event is the unified lifecycle event model for streaming subscribers.
//
// Design principles:
//   - Versioned and forward-compatible (add fields, don't rename/remove)
//   - Single Type discriminator with a flat payload
//   - Monotonic Seq for per-emitter ordering guarantees
//
// Wire format is {type, payload, ...}; the first message a subscriber receives
// is always a snapshot event.
type Event struct {
	// Version for forward compatibility. Current version: 1.
	Version int `json:"version"`

	// Type identifies the kind of event.
	Type EventType `json:"type"`

	// Time is when the event was emitted.
	Time time.Time `json:"time"`

	// Seq is monotonic across the runtime for ordering guarantees.
	Seq uint64 `json:"seq"`

	// Payload carries the event-specific fields.
	Payload EventPayload `json:"payload"`
}

// EventType identifies the kind of lifecycle event.
type EventType string

const (
	// Task lifecycle
	EventTaskCreated   EventType = "task-created"
	EventTaskStarted   EventType = "task-started"
	EventTaskUpdated   EventType = "task-updated"
	EventTaskCompleted EventType = "task-completed"
	EventTaskFailed    EventType = "task-failed"
	EventTaskError     EventType = "task-error"

	// Planning
	EventPlanningStarted  EventType = "planning-started"
	EventPlanningFinished EventType = "planning-finished"

	// Steps
	EventStepCreated   EventType = "step-created"
	EventStepExecuting EventType = "step-executing"
	EventStepUpdated   EventType = "step-updated"

	// EventSnapshot is sent once to each subscriber on connect.
	EventSnapshot EventType = "snapshot"
)

// EventPayload carries the event-specific fields. Every runtime event sets
// TaskID; step events carry the step; snapshot events carry tasks and tools.
type EventPayload struct {
	// TaskID identifies the task the event belongs to.
	TaskID string `json:"taskId,omitempty"`

	// Task is the full task record (task-created, task-updated).
	Task *Task `json:"task,omitempty"`

	// Step is the step record (step-created, step-executing, step-updated).
	Step *Step `json:"step,omitempty"`

	// Thought is the planner's reasoning (planning-finished).
	Thought string `json:"thought,omitempty"`

	// Action is the planned action (planning-finished).
	Action *Action `json:"action,omitempty"`

	// Finish is the planned finish directive (planning-finished).
	Finish *Finish `json:"finish,omitempty"`

	// Summary is the final outcome (task-completed).
	Summary string `json:"summary,omitempty"`

	// Error describes the failure (task-failed, task-error).
	Error string `json:"error,omitempty"`

	// Context is the updated task context (task-updated).
	Context *TaskContext `json:"context,omitempty"`

	// Snapshot fields, set only for EventSnapshot.
	Tasks []*Task          `json:"tasks,omitempty"`
	Tools []ToolDefinition `json:"tools,omitempty"`
}
