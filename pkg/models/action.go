package models

// Action is a tagged command from the closed tool set.
//
// Type must name a registered tool; Params carries the tool parameters as
// decoded JSON. Params content is validated against the tool schema before a
// step is created from the action.
type Action struct {
	// Type is the tool name, e.g. "navigate" or "click".
	Type string `json:"type"`

	// Params holds the tool parameters.
	Params map[string]any `json:"params"`
}

// Clone returns a copy of the action with a shallowly copied params map.
func (a Action) Clone() Action {
	clone := a
	if a.Params != nil {
		clone.Params = make(map[string]any, len(a.Params))
		for k, v := range a.Params {
			clone.Params[k] = v
		}
	}
	return clone
}

// ObservationResult classifies an observation as success or error.
type ObservationResult string

const (
	// ObservationSuccess indicates the action succeeded.
	ObservationSuccess ObservationResult = "success"

	// ObservationError indicates the action failed.
	ObservationError ObservationResult = "error"
)

// Observation is the executor's structured result of performing an action.
type Observation struct {
	// Result classifies the outcome.
	Result ObservationResult `json:"result"`

	// Message is a human-readable description of what happened.
	Message string `json:"message"`

	// Data carries optional tool-specific payload, such as extracted samples
	// or scroll offsets.
	Data map[string]any `json:"data,omitempty"`
}

// Clone returns a copy of the observation with a shallowly copied data map.
func (o Observation) Clone() Observation {
	clone := o
	if o.Data != nil {
		clone.Data = make(map[string]any, len(o.Data))
		for k, v := range o.Data {
			clone.Data[k] = v
		}
	}
	return clone
}

// FinishStatus is the terminal status requested by a finish directive.
type FinishStatus string

const (
	// FinishSuccess requests a successful terminal transition.
	FinishSuccess FinishStatus = "success"

	// FinishFailed requests a failed terminal transition.
	FinishFailed FinishStatus = "failed"
)

// Finish is the planner's directive to end the task.
type Finish struct {
	// Status is the requested terminal status.
	Status FinishStatus `json:"status"`

	// Summary describes the outcome.
	Summary string `json:"summary"`
}

// PlanOutput is the planner's structured output for one loop iteration.
//
// Thought is always present. Semantically at most one of Action and Finish is
// required; a plan carrying neither is a contract violation.
type PlanOutput struct {
	// Thought is the planner's reasoning for this iteration.
	Thought string `json:"thought"`

	// Action is the next action to execute, if any.
	Action *Action `json:"action,omitempty"`

	// Finish ends the task when present.
	Finish *Finish `json:"finish,omitempty"`

	// Caution carries an optional safety note from the planner.
	Caution string `json:"caution,omitempty"`
}
