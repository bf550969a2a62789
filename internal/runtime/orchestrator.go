package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/webpilot-ai/webpilot/internal/executor"
	"github.com/webpilot-ai/webpilot/internal/observability"
	"github.com/webpilot-ai/webpilot/internal/planner"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

// plannerMemoryWindow is the number of memory entries read for each planning
// call. The prompt renderer applies its own, smaller window on top.
const plannerMemoryWindow = 16

// budgetExhaustedMessage is the observation message synthesized when a task
// hits its step budget without a finish.
const budgetExhaustedMessage = "Max step count reached without completion."

// orchestrator drives one task through the perceive-plan-act loop.
//
// State machine: task pending -> running -> {succeeded, failed}; step
// running -> {succeeded, failed}. Terminal states are absorbing. There are
// no retries at this layer: a failed plan, an invalid action, or a fatal
// executor ends the task.
type orchestrator struct {
	rt     *Runtime
	taskID string
}

func (o *orchestrator) run(ctx context.Context) {
	rt := o.rt
	ctx = observability.WithTaskID(ctx, o.taskID)

	task, ok := rt.store.get(o.taskID)
	if !ok {
		return
	}

	ctx, span := rt.tracer.StartTaskSpan(ctx, o.taskID, task.Goal)
	var runErr error
	defer func() { observability.EndSpan(span, runErr) }()

	rt.store.mutate(o.taskID, func(t *models.Task) {
		t.Status = models.TaskStatusRunning
		t.UpdatedAt = time.Now().UTC()
	})
	rt.emitter.emit(models.EventTaskStarted, models.EventPayload{TaskID: o.taskID})
	rt.logger.Info(ctx, "task started", "goal", task.Goal)

	for stepCount := 0; stepCount < rt.policy.MaxSteps; stepCount++ {
		plan, err := o.planOnce(ctx, stepCount)
		if err != nil {
			runErr = err
			o.failTask(ctx, err.Error())
			return
		}

		if plan.Caution != "" {
			rt.memory.Remember(o.taskID, models.MemoryEntry{
				Type:    models.MemoryThought,
				Content: "Safety note: " + plan.Caution,
			})
		}

		if plan.Finish != nil {
			o.finishTask(ctx, plan.Finish)
			return
		}

		if plan.Action == nil {
			err := NewTaskError(KindPlannerContract, "Planner returned neither an action nor a finish.")
			runErr = err
			o.failTask(ctx, err.Message)
			return
		}

		if result := rt.registry.Validate(*plan.Action); !result.OK {
			err := NewTaskError(KindActionValidation,
				"Invalid action: "+strings.Join(result.Issues, "; "))
			runErr = err
			o.failTask(ctx, err.Message)
			return
		}

		step := o.createStep(ctx, *plan.Action, plan.Thought)

		execResult, err := o.executeStep(ctx, step)
		if err != nil {
			runErr = WrapTaskError(KindExecutor, fmt.Sprintf("Executor failed: %v", err), err)

			observation := models.Observation{
				Result:  models.ObservationError,
				Message: err.Error(),
			}
			rt.memory.Remember(o.taskID, models.MemoryEntry{
				Type:    models.MemoryObservation,
				Content: "ERROR: " + err.Error(),
			})
			o.finalizeStep(ctx, step.ID, observation)
			rt.emitter.emit(models.EventTaskError, models.EventPayload{
				TaskID: o.taskID,
				Error:  runErr.Error(),
			})
			o.failTask(ctx, runErr.Error())
			return
		}

		o.recordObservation(execResult.Observation)
		o.finalizeStep(ctx, step.ID, execResult.Observation)

		if execResult.DidTerminate {
			summary := execResult.Summary
			if summary == "" {
				task, _ := rt.store.get(o.taskID)
				summary = rt.memory.Summarize(task, execResult.Observation)
			}
			if execResult.Observation.Result == models.ObservationSuccess {
				o.completeTask(ctx, summary)
			} else {
				o.failTask(ctx, summary)
			}
			return
		}
	}

	// Budget exhausted: synthesize a summary and route it through the failed
	// finish path.
	observation := models.Observation{
		Result:  models.ObservationError,
		Message: budgetExhaustedMessage,
	}
	task, _ = rt.store.get(o.taskID)
	summary := rt.memory.Summarize(task, observation)
	runErr = NewTaskError(KindStepBudget, summary)
	o.finishTask(ctx, &models.Finish{Status: models.FinishFailed, Summary: summary})
}

// planOnce reads recent memory, calls the planner, and records the thought.
func (o *orchestrator) planOnce(ctx context.Context, stepCount int) (*models.PlanOutput, error) {
	rt := o.rt

	task, _ := rt.store.get(o.taskID)
	recent := rt.memory.GetRecent(o.taskID, plannerMemoryWindow)

	rt.emitter.emit(models.EventPlanningStarted, models.EventPayload{TaskID: o.taskID})

	start := time.Now()
	plan, err := rt.planner.Plan(ctx, &planner.PlanRequest{
		Task:         task,
		RecentMemory: recent,
		Tools:        rt.registry.List(),
		StepCount:    stepCount,
	})
	if rt.metrics != nil {
		rt.metrics.PlannerDuration.WithLabelValues(rt.planner.Name(), rt.plannerModel).
			Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.PlannerCalls.WithLabelValues(rt.planner.Name(), "error").Inc()
		}
		rt.logger.Warn(ctx, "planner call failed", "error", err)
		return nil, classifyPlannerError(err)
	}
	if rt.metrics != nil {
		rt.metrics.PlannerCalls.WithLabelValues(rt.planner.Name(), "success").Inc()
	}

	rt.memory.Remember(o.taskID, models.MemoryEntry{
		Type:    models.MemoryThought,
		Content: plan.Thought,
	})
	rt.emitter.emit(models.EventPlanningFinished, models.EventPayload{
		TaskID:  o.taskID,
		Thought: plan.Thought,
		Action:  plan.Action,
		Finish:  plan.Finish,
	})
	return plan, nil
}

// classifyPlannerError separates planner output that could not be parsed
// from provider calls that failed outright.
func classifyPlannerError(err error) *TaskError {
	kind := KindPlannerTransport
	if errors.Is(err, planner.ErrUnparsable) {
		kind = KindPlannerParse
	}
	return WrapTaskError(kind, fmt.Sprintf("Planning failed: %v", err), err)
}

// createStep appends a running step, records the intent in memory, and emits
// step-created then step-executing.
func (o *orchestrator) createStep(ctx context.Context, action models.Action, thought string) *models.Step {
	rt := o.rt
	now := time.Now().UTC()

	var created *models.Step
	rt.store.mutate(o.taskID, func(t *models.Task) {
		step := &models.Step{
			ID:           uuid.NewString(),
			Index:        len(t.Steps),
			Status:       models.StepStatusRunning,
			Action:       action.Clone(),
			ModelThought: thought,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		t.Steps = append(t.Steps, step)
		t.UpdatedAt = now
		created = step.Clone()
	})

	rt.emitter.emit(models.EventStepCreated, models.EventPayload{
		TaskID: o.taskID,
		Step:   created,
	})

	params, _ := json.Marshal(action.Params)
	rt.memory.Remember(o.taskID, models.MemoryEntry{
		Type:    models.MemoryAction,
		Content: fmt.Sprintf("%s %s", action.Type, params),
	})
	rt.emitter.emit(models.EventStepExecuting, models.EventPayload{
		TaskID: o.taskID,
		Step:   created,
	})

	return created
}

// executeStep invokes the executor with panic containment.
func (o *orchestrator) executeStep(ctx context.Context, step *models.Step) (result *executor.Result, err error) {
	rt := o.rt
	ctx = observability.WithStepID(ctx, step.ID)

	ctx, span := rt.tracer.StartStepSpan(ctx, o.taskID, step.ID, step.Action.Type)
	defer func() { observability.EndSpan(span, err) }()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()

	task, _ := rt.store.get(o.taskID)

	start := time.Now()
	result, err = rt.currentExecutor().Execute(ctx, &executor.Request{
		Task:   task,
		Step:   step,
		Action: step.Action,
	})
	if rt.metrics != nil {
		rt.metrics.ActionDuration.WithLabelValues(step.Action.Type).
			Observe(time.Since(start).Seconds())
	}
	if err == nil && result == nil {
		err = fmt.Errorf("executor returned no result")
	}
	if rt.metrics != nil {
		outcome := "success"
		if err != nil || result.Observation.Result == models.ObservationError {
			outcome = "error"
		}
		rt.metrics.ActionCounter.WithLabelValues(step.Action.Type, outcome).Inc()
	}
	return result, err
}

// recordObservation appends the observation memory entry.
func (o *orchestrator) recordObservation(observation models.Observation) {
	prefix := "SUCCESS: "
	if observation.Result == models.ObservationError {
		prefix = "ERROR: "
	}
	o.rt.memory.Remember(o.taskID, models.MemoryEntry{
		Type:     models.MemoryObservation,
		Content:  prefix + observation.Message,
		Metadata: observation.Data,
	})
}

// finalizeStep attaches the observation, flips the step terminal, and emits
// step-updated.
func (o *orchestrator) finalizeStep(ctx context.Context, stepID string, observation models.Observation) {
	rt := o.rt
	now := time.Now().UTC()

	var updated *models.Step
	rt.store.mutate(o.taskID, func(t *models.Task) {
		for _, step := range t.Steps {
			if step.ID != stepID {
				continue
			}
			if observation.Result == models.ObservationSuccess {
				step.Status = models.StepStatusSucceeded
			} else {
				step.Status = models.StepStatusFailed
			}
			obs := observation.Clone()
			step.Observation = &obs
			step.UpdatedAt = now
			t.UpdatedAt = now
			updated = step.Clone()
			return
		}
	})

	if updated != nil {
		rt.emitter.emit(models.EventStepUpdated, models.EventPayload{
			TaskID: o.taskID,
			Step:   updated,
		})
	}
}

// finishTask applies a finish directive: success completes the task and
// records a summary memory entry, failed routes through the failure path
// with the summary as the error.
func (o *orchestrator) finishTask(ctx context.Context, finish *models.Finish) {
	if finish.Status == models.FinishSuccess {
		o.rt.memory.Remember(o.taskID, models.MemoryEntry{
			Type:    models.MemorySummary,
			Content: finish.Summary,
		})
		o.completeTask(ctx, finish.Summary)
		return
	}
	o.failTask(ctx, finish.Summary)
}

func (o *orchestrator) completeTask(ctx context.Context, summary string) {
	rt := o.rt
	task, _ := rt.store.mutate(o.taskID, func(t *models.Task) {
		t.Status = models.TaskStatusSucceeded
		t.Summary = summary
		t.UpdatedAt = time.Now().UTC()
	})
	o.observeTerminal(task, "succeeded")
	rt.emitter.emit(models.EventTaskCompleted, models.EventPayload{
		TaskID:  o.taskID,
		Summary: summary,
	})
	rt.logger.Info(ctx, "task completed", "summary", summary)
}

func (o *orchestrator) failTask(ctx context.Context, message string) {
	rt := o.rt
	task, _ := rt.store.mutate(o.taskID, func(t *models.Task) {
		t.Status = models.TaskStatusFailed
		t.LastError = message
		t.Summary = message
		t.UpdatedAt = time.Now().UTC()
	})
	o.observeTerminal(task, "failed")
	rt.emitter.emit(models.EventTaskFailed, models.EventPayload{
		TaskID: o.taskID,
		Error:  message,
	})
	rt.logger.Warn(ctx, "task failed", "error", message)
}

func (o *orchestrator) observeTerminal(task *models.Task, status string) {
	rt := o.rt
	if rt.metrics == nil || task == nil {
		return
	}
	rt.metrics.TasksFinished.WithLabelValues(status).Inc()
	rt.metrics.StepsPerTask.Observe(float64(len(task.Steps)))
}
