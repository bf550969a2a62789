// Package executor defines the action execution contract and the default
// executor used when no browser surface is attached.
package executor

import (
	"context"
	"fmt"

	"github.com/webpilot-ai/webpilot/pkg/models"
)

// Executor performs a validated action against the external world.
//
// Implementations are expected to be slow (seconds) and must not panic; a
// returned error is treated as fatal for the task. Recoverable failures are
// reported as error observations instead so the planner can react.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Result, error)
}

// Request carries one action execution.
type Request struct {
	// Task is the owning task. Read-only for the executor.
	Task *models.Task

	// Step is the step being executed. Read-only for the executor.
	Step *models.Step

	// Action is the validated action to perform.
	Action models.Action
}

// Result is the outcome of performing an action.
type Result struct {
	// Observation describes what happened.
	Observation models.Observation

	// DidTerminate signals the task should end now: set on finish actions
	// and on fatal failures such as safety policy violations.
	DidTerminate bool

	// Summary is an optional final summary accompanying DidTerminate.
	Summary string
}

// Default is the executor used when none is registered. Every action other
// than finish returns a terminal error observation so tasks do not spin
// against a missing browser.
type Default struct{}

// NewDefault creates the fallback executor.
func NewDefault() *Default {
	return &Default{}
}

// Execute terminates the task: finish actions succeed, everything else fails.
func (d *Default) Execute(_ context.Context, req *Request) (*Result, error) {
	if req.Action.Type == "finish" {
		status, _ := req.Action.Params["status"].(string)
		summary, _ := req.Action.Params["summary"].(string)
		result := models.ObservationSuccess
		if status == string(models.FinishFailed) {
			result = models.ObservationError
		}
		return &Result{
			Observation: models.Observation{
				Result:  result,
				Message: summary,
			},
			DidTerminate: true,
			Summary:      summary,
		}, nil
	}

	return &Result{
		Observation: models.Observation{
			Result:  models.ObservationError,
			Message: fmt.Sprintf("No executor is registered; cannot perform %q.", req.Action.Type),
		},
		DidTerminate: true,
	}, nil
}
