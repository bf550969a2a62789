package runtime

import "errors"

// ErrorKind classifies task-level failures for clients and logs.
type ErrorKind string

const (
	// KindValidation marks malformed client input, e.g. an empty goal.
	KindValidation ErrorKind = "ValidationError"

	// KindConfig marks a missing planner configuration.
	KindConfig ErrorKind = "ConfigError"

	// KindPlannerParse marks unparsable planner output.
	KindPlannerParse ErrorKind = "PlannerParseError"

	// KindPlannerTransport marks a provider call that failed after the
	// provider's own retries, e.g. rate limits or network errors.
	KindPlannerTransport ErrorKind = "PlannerTransportError"

	// KindPlannerContract marks a plan with neither action nor finish.
	KindPlannerContract ErrorKind = "PlannerContractError"

	// KindActionValidation marks a planned action rejected by the registry.
	KindActionValidation ErrorKind = "ActionValidationError"

	// KindExecutor marks a fatal executor failure.
	KindExecutor ErrorKind = "ExecutorError"

	// KindStepBudget marks a task that ran out of steps without finishing.
	KindStepBudget ErrorKind = "StepBudgetExhausted"
)

// ErrTaskNotFound reports a lookup for an unknown task ID.
var ErrTaskNotFound = errors.New("task not found")

// TaskError is a classified failure surfaced on tasks and HTTP responses.
type TaskError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error returns the message.
func (e *TaskError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// NewTaskError creates a TaskError without a cause.
func NewTaskError(kind ErrorKind, message string) *TaskError {
	return &TaskError{Kind: kind, Message: message}
}

// WrapTaskError creates a TaskError around a cause.
func WrapTaskError(kind ErrorKind, message string, cause error) *TaskError {
	return &TaskError{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err is a TaskError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *TaskError
	return errors.As(err, &te) && te.Kind == kind
}
