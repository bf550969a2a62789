package models

import "sort"

// ParamSpec describes a single tool parameter.
type ParamSpec struct {
	// Description explains the parameter to the planner.
	Description string `json:"description"`

	// Required marks parameters that must be present in an action.
	Required bool `json:"required,omitempty"`
}

// ExecutionProfile describes how a tool executes.
type ExecutionProfile struct {
	// InvokesExecutor is true for tools realized against the browser surface.
	InvokesExecutor bool `json:"invokesExecutor"`

	// ExpectedLatencyMs is a rough latency hint for the planner.
	ExpectedLatencyMs int `json:"expectedLatencyMs"`
}

// ToolDefinition describes one action kind in the registry catalog.
// The catalog is fixed at compile time.
type ToolDefinition struct {
	// Name is the action type, e.g. "navigate".
	Name string `json:"name"`

	// Description explains the tool to the planner.
	Description string `json:"description"`

	// Schema maps parameter names to their specs.
	Schema map[string]ParamSpec `json:"schema"`

	// Execution describes how the tool runs.
	Execution ExecutionProfile `json:"execution"`

	// SafetyNotes lists policy constraints surfaced to the planner.
	SafetyNotes []string `json:"safetyNotes,omitempty"`
}

// RequiredParams returns the names of required parameters in sorted order.
func (d ToolDefinition) RequiredParams() []string {
	var required []string
	for name, spec := range d.Schema {
		if spec.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return required
}

// OptionalParams returns the names of optional parameters in sorted order.
func (d ToolDefinition) OptionalParams() []string {
	var optional []string
	for name, spec := range d.Schema {
		if !spec.Required {
			optional = append(optional, name)
		}
	}
	sort.Strings(optional)
	return optional
}
