// Package models provides domain types for the webpilot agent runtime.
package models

import (
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task is queued and waiting for capacity.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusRunning indicates an orchestrator is driving the task.
	TaskStatusRunning TaskStatus = "running"

	// TaskStatusSucceeded indicates the task finished successfully.
	TaskStatusSucceeded TaskStatus = "succeeded"

	// TaskStatusFailed indicates the task finished with an error.
	TaskStatusFailed TaskStatus = "failed"
)

// StepStatus represents the lifecycle state of a single step.
type StepStatus string

const (
	// StepStatusPending indicates the step has been planned but not started.
	StepStatusPending StepStatus = "pending"

	// StepStatusRunning indicates the step's action is being executed.
	StepStatusRunning StepStatus = "running"

	// StepStatusSucceeded indicates the action produced a success observation.
	StepStatusSucceeded StepStatus = "succeeded"

	// StepStatusFailed indicates the action produced an error observation.
	StepStatusFailed StepStatus = "failed"
)

// Task is a user-submitted goal and its execution record.
//
// A task is created by the runtime on goal submission, mutated only by its
// owning orchestrator while running, and never destroyed during the process
// lifetime. Once Status is succeeded or failed the task is terminal and no
// further mutation is visible to observers.
type Task struct {
	// ID is the unique identifier for the task.
	ID string `json:"id"`

	// Goal is the user-supplied objective. Never empty.
	Goal string `json:"goal"`

	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`

	// Steps is the ordered sequence of executed steps.
	// Steps[i].Index == i always holds.
	Steps []*Step `json:"steps"`

	// Summary is the final outcome description, set on terminal transition.
	Summary string `json:"summary,omitempty"`

	// LastError describes the failure when Status is failed.
	LastError string `json:"lastError,omitempty"`

	// Context carries optional page context supplied by the client.
	Context *TaskContext `json:"context,omitempty"`

	// CreatedAt is when the task was submitted.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the task was last mutated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskContext carries optional information about the page the task starts from.
type TaskContext struct {
	// URL of the current page.
	URL string `json:"url,omitempty"`

	// Title of the current page.
	Title string `json:"title,omitempty"`

	// Description is a free-form description of the page or situation.
	Description string `json:"description,omitempty"`

	// HTML is an excerpt of the initial page HTML.
	HTML string `json:"html,omitempty"`
}

// IsTerminal returns true if the task is in a terminal state.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusSucceeded || t.Status == TaskStatusFailed
}

// Clone returns a deep copy of the task suitable for handing to subscribers
// without exposing the store's instance to concurrent mutation.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Context != nil {
		ctx := *t.Context
		clone.Context = &ctx
	}
	if t.Steps != nil {
		clone.Steps = make([]*Step, len(t.Steps))
		for i, s := range t.Steps {
			clone.Steps[i] = s.Clone()
		}
	}
	return &clone
}

// Merge applies non-empty fields of patch onto the context in place.
func (c *TaskContext) Merge(patch *TaskContext) {
	if patch == nil {
		return
	}
	if patch.URL != "" {
		c.URL = patch.URL
	}
	if patch.Title != "" {
		c.Title = patch.Title
	}
	if patch.Description != "" {
		c.Description = patch.Description
	}
	if patch.HTML != "" {
		c.HTML = patch.HTML
	}
}

// Step is one plan-and-execute iteration within a task.
//
// A step is created only from a validated action, finalized exactly once with
// an observation, and never removed.
type Step struct {
	// ID is the unique identifier for the step.
	ID string `json:"id"`

	// Index is the step's position within Task.Steps. Dense and monotonic.
	Index int `json:"index"`

	// Status is the current lifecycle state.
	Status StepStatus `json:"status"`

	// Action is the validated action this step executes.
	Action Action `json:"action"`

	// ModelThought is the planner's reasoning recorded for this step.
	ModelThought string `json:"modelThought,omitempty"`

	// Observation is the executor's result, present once the step is terminal.
	Observation *Observation `json:"observation,omitempty"`

	// CreatedAt is when the step was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the step was finalized.
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsTerminal returns true if the step is in a terminal state.
func (s *Step) IsTerminal() bool {
	return s.Status == StepStatusSucceeded || s.Status == StepStatusFailed
}

// Clone returns a deep copy of the step.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Action = s.Action.Clone()
	if s.Observation != nil {
		obs := s.Observation.Clone()
		clone.Observation = &obs
	}
	return &clone
}
