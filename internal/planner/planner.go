// Package planner defines the planning contract the orchestrator drives and
// the prompt/parse plumbing shared by the concrete providers.
package planner

import (
	"context"

	"github.com/webpilot-ai/webpilot/pkg/models"
)

// Planner produces the next plan for a task from its goal, recent memory, and
// the tool catalog.
//
// Implementations wrap a language model and are assumed safe for concurrent
// invocation across tasks. A planner is unreliable: it may return malformed
// output, which surfaces as an error from Plan.
type Planner interface {
	// Plan returns the planner's decision for one loop iteration.
	Plan(ctx context.Context, req *PlanRequest) (*models.PlanOutput, error)

	// Name identifies the provider, e.g. "openai".
	Name() string
}

// PlanRequest is the input to a single planning call.
type PlanRequest struct {
	// Task is the task being driven. Read-only for the planner.
	Task *models.Task

	// RecentMemory is the window of memory entries to prime the model with.
	RecentMemory []models.MemoryEntry

	// Tools is the catalog of actions the planner may choose from.
	Tools []models.ToolDefinition

	// StepCount is the number of steps already taken.
	StepCount int
}
