// Package runtime owns the task lifecycle: admission, FIFO scheduling under
// the parallelism cap, and the perceive-plan-act orchestration loop.
package runtime

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/internal/executor"
	"github.com/webpilot-ai/webpilot/internal/memory"
	"github.com/webpilot-ai/webpilot/internal/observability"
	"github.com/webpilot-ai/webpilot/internal/planner"
	"github.com/webpilot-ai/webpilot/internal/tools"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

// Options configures a Runtime. Planner, Registry, and Memory are required
// for task execution; the rest default to inert implementations.
type Options struct {
	// Policy bounds step count, parallelism, and waits.
	Policy config.SafetyPolicy

	// Planner produces the next action for each loop iteration.
	Planner planner.Planner

	// PlannerModel names the model, used only as a metric label.
	PlannerModel string

	// Executor performs validated actions. Defaults to executor.NewDefault.
	Executor executor.Executor

	// Registry is the tool catalog and validator.
	Registry *tools.Registry

	// Memory is the per-task memory store.
	Memory *memory.Store

	// Logger receives structured runtime logs.
	Logger *observability.Logger

	// Metrics receives runtime counters and histograms. Optional.
	Metrics *observability.Metrics

	// Tracer receives task and step spans. Optional.
	Tracer *observability.Tracer

	// Sink receives every lifecycle event, in emission order. Optional.
	Sink func(models.Event)
}

// Runtime is the task engine. It admits goals, schedules them FIFO under the
// MaxParallelTasks cap, and runs one orchestrator per active task.
type Runtime struct {
	policy       config.SafetyPolicy
	planner      planner.Planner
	plannerModel string
	registry     *tools.Registry
	memory       *memory.Store
	logger       *observability.Logger
	metrics      *observability.Metrics
	tracer       *observability.Tracer

	store   *taskStore
	emitter *emitter

	mu       sync.Mutex
	executor executor.Executor
	queue    []string
	active   map[string]struct{}
	wg       sync.WaitGroup
}

// New creates a Runtime from options.
func New(opts Options) *Runtime {
	defaults := config.DefaultSafetyPolicy()
	if opts.Policy.MaxSteps <= 0 {
		opts.Policy.MaxSteps = defaults.MaxSteps
	}
	if opts.Policy.MaxParallelTasks <= 0 {
		opts.Policy.MaxParallelTasks = defaults.MaxParallelTasks
	}
	if opts.Policy.MaxWait <= 0 {
		opts.Policy.MaxWait = defaults.MaxWait
	}
	if opts.Executor == nil {
		opts.Executor = executor.NewDefault()
	}
	if opts.Registry == nil {
		opts.Registry = tools.NewRegistry()
	}
	if opts.Memory == nil {
		opts.Memory = memory.NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewLogger(observability.LogConfig{Output: io.Discard})
	}
	if opts.Tracer == nil {
		opts.Tracer, _, _ = observability.NewTracer(context.Background(), observability.TraceConfig{})
	}

	return &Runtime{
		policy:       opts.Policy,
		planner:      opts.Planner,
		plannerModel: opts.PlannerModel,
		registry:     opts.Registry,
		memory:       opts.Memory,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		tracer:       opts.Tracer,
		store:        newTaskStore(),
		emitter:      newEmitter(opts.Sink),
		executor:     opts.Executor,
		active:       make(map[string]struct{}),
	}
}

// CreateTask admits a goal, emits task-created, and schedules the task.
// The returned task is a snapshot taken at admission.
func (r *Runtime) CreateTask(ctx context.Context, goal string, taskContext *models.TaskContext) (*models.Task, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, NewTaskError(KindValidation, "Goal must not be empty.")
	}
	if r.planner == nil {
		return nil, NewTaskError(KindConfig, "No planner is configured.")
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:        uuid.NewString(),
		Goal:      goal,
		Status:    models.TaskStatusPending,
		Steps:     []*models.Step{},
		Context:   taskContext,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.store.add(task)

	if r.metrics != nil {
		r.metrics.TasksCreated.Inc()
		r.metrics.QueuedTasks.Inc()
	}
	r.emitter.emit(models.EventTaskCreated, models.EventPayload{
		TaskID: task.ID,
		Task:   task.Clone(),
	})
	r.logger.Info(observability.WithTaskID(ctx, task.ID), "task created", "goal", goal)

	r.mu.Lock()
	r.queue = append(r.queue, task.ID)
	r.drainLocked(ctx)
	r.mu.Unlock()

	return task.Clone(), nil
}

// GetTask returns a snapshot of the task, or false if it does not exist.
func (r *Runtime) GetTask(id string) (*models.Task, bool) {
	return r.store.get(id)
}

// ListTasks returns snapshots of all tasks, most recently created first.
func (r *Runtime) ListTasks() []*models.Task {
	return r.store.list()
}

// UpdateTaskContext merges the patch into the task's context. Terminal tasks
// reject updates.
func (r *Runtime) UpdateTaskContext(id string, patch *models.TaskContext) (*models.Task, error) {
	var rejected error
	task, ok := r.store.mutate(id, func(t *models.Task) {
		if t.IsTerminal() {
			rejected = NewTaskError(KindValidation,
				fmt.Sprintf("Task is %s; context can no longer be updated.", t.Status))
			return
		}
		if t.Context == nil {
			t.Context = &models.TaskContext{}
		}
		t.Context.Merge(patch)
		t.UpdatedAt = time.Now().UTC()
	})
	if !ok {
		return nil, ErrTaskNotFound
	}
	if rejected != nil {
		return nil, rejected
	}

	r.emitter.emit(models.EventTaskUpdated, models.EventPayload{
		TaskID:  id,
		Task:    task,
		Context: task.Context,
	})
	return task, nil
}

// RegisterExecutor swaps the executor used for subsequent steps. Steps already
// in flight finish on the executor they started with.
func (r *Runtime) RegisterExecutor(exec executor.Executor) {
	if exec == nil {
		return
	}
	r.mu.Lock()
	r.executor = exec
	r.mu.Unlock()
}

func (r *Runtime) currentExecutor() executor.Executor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.executor
}

// Wait blocks until every admitted task has reached a terminal state.
func (r *Runtime) Wait() {
	r.wg.Wait()
}

// drainLocked starts queued tasks while capacity remains. Caller holds r.mu.
func (r *Runtime) drainLocked(ctx context.Context) {
	for len(r.active) < r.policy.MaxParallelTasks && len(r.queue) > 0 {
		taskID := r.queue[0]
		r.queue = r.queue[1:]
		r.active[taskID] = struct{}{}
		if r.metrics != nil {
			r.metrics.QueuedTasks.Dec()
			r.metrics.RunningTasks.Inc()
		}
		r.wg.Add(1)
		go r.runTask(ctx, taskID)
	}
}

func (r *Runtime) runTask(ctx context.Context, taskID string) {
	defer r.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			message := fmt.Sprintf("Internal error: %v", rec)
			r.store.mutate(taskID, func(t *models.Task) {
				t.Status = models.TaskStatusFailed
				t.LastError = message
				t.Summary = message
				t.UpdatedAt = time.Now().UTC()
			})
			r.emitter.emit(models.EventTaskFailed, models.EventPayload{
				TaskID: taskID,
				Error:  message,
			})
			r.logger.Error(observability.WithTaskID(ctx, taskID), "orchestrator panicked", "panic", rec)
		}
		if r.metrics != nil {
			r.metrics.RunningTasks.Dec()
		}
		r.mu.Lock()
		delete(r.active, taskID)
		r.drainLocked(ctx)
		r.mu.Unlock()
	}()

	o := &orchestrator{rt: r, taskID: taskID}
	o.run(ctx)
}
